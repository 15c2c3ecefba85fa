package stats

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/knaka256/ocrhub/pkg/middleware"
)

// Config は統計サービスの設定。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// JWTSecret はトークン検証用の共有秘密鍵。
	JWTSecret string
	// DBPath はSQLiteデータベースファイルのパス。
	DBPath string
}

// LoadConfig は環境変数から統計サービスの設定を構築する。
func LoadConfig() Config {
	return Config{
		Port:      getEnvOr("PORT", "8003"),
		JWTSecret: getEnvOr("JWT_SECRET", "dev-secret-key"),
		DBPath:    getEnvOr("STATS_DB_PATH", "/data/stats.db"),
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// Server は統計サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// config はサービス設定。
	config Config
	// store は利用実績ストア。
	store *Store
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewServer は新しい統計サーバーを生成する。
func NewServer(cfg Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router: router,
		config: cfg,
		store:  NewStore(sqlDB),
		db:     sqlDB,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.config.Port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	st := s.router.Group("/stats")
	{
		// 利用実績の記録（内部API - 各サービスから呼び出されるため認可は行わない）
		st.POST("/record", s.handleRecord())
		// 集計結果の取得
		st.GET("/", middleware.BearerAuth(s.config.JWTSecret), s.handleSummary())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "stats"})
	})
}

// recordRequest は利用実績記録のリクエストボディ。
type recordRequest struct {
	// Service は記録元サービス名。
	Service string `json:"service" binding:"required"`
	// Event はイベント名。
	Event string `json:"event" binding:"required"`
	// Count は件数。
	Count int `json:"count" binding:"required"`
}

// handleRecord は利用実績の記録を処理するハンドラを返す。
func (s *Server) handleRecord() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req recordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "service・event・countが必要です"})
			return
		}

		if err := s.store.Record(c.Request.Context(), req.Service, req.Event, req.Count); err != nil {
			log.Printf("利用実績の記録に失敗: service=%s, event=%s, error=%v", req.Service, req.Event, err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "利用実績の記録に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "recorded"})
	}
}

// handleSummary は集計結果の取得を処理するハンドラを返す。
func (s *Server) handleSummary() gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := s.store.Summarize(c.Request.Context())
		if err != nil {
			log.Printf("利用実績の集計に失敗: error=%v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "利用実績の集計に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}
