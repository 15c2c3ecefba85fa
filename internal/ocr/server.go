package ocr

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/knaka256/ocrhub/pkg/httpclient"
	"github.com/knaka256/ocrhub/pkg/middleware"
)

// maxUploadSize はアップロード可能なファイルの最大サイズ（50MB）。
// テスト時に差し替え可能にするためvarとして宣言する。
var maxUploadSize int64 = 50 << 20

// Server は画像処理サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// config はサービス設定。起動時に一度だけ構築される。
	config Config
	// engine はOCRエンジン。
	engine Engine
	// store はOCR結果の永続化ストア。
	store ResultStore
	// db はSQLiteデータベース接続。
	db *sql.DB
	// statsClient は統計サービスへのHTTPクライアント。
	statsClient *httpclient.Client
}

// NewServer は新しい画像処理サーバーを生成する。
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

	// マルチパートフォームの最大メモリを設定する。
	router.MaxMultipartMemory = maxUploadSize

	s := &Server{
		router:      router,
		config:      cfg,
		engine:      NewTesseractEngine(cfg.Languages),
		store:       NewStore(sqlDB),
		db:          sqlDB,
		statsClient: httpclient.New(cfg.StatsServiceURL),
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
	// バッチOCR処理（マルチパートフォーム）
	s.router.POST("/process_image/", middleware.BearerAuth(s.config.JWTSecret), s.handleProcessImage())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "ocr"})
	})
}

// recordUsageRequest は統計サービスへの利用実績記録リクエスト。
type recordUsageRequest struct {
	// Service は記録元サービス名。
	Service string `json:"service"`
	// Event はイベント名。
	Event string `json:"event"`
	// Count は件数。
	Count int `json:"count"`
}

// handleProcessImage は画像バッチのOCR処理を行うハンドラを返す。
// 各画像は独立に処理され、一部の失敗はバッチ全体を失敗させない。
// 全件成功なら200、一部でも失敗があれば207で項目単位の結果を返す。
func (s *Server) handleProcessImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("マルチパートフォームの解析に失敗しました: %v", err)})
			return
		}

		fileHeaders := form.File["files"]
		if len(fileHeaders) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "filesフィールドに画像ファイルが必要です"})
			return
		}

		items := make([]BatchItem, 0, len(fileHeaders))
		for _, fh := range fileHeaders {
			if fh.Size > maxUploadSize {
				c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("ファイルサイズが上限を超えています: %s（最大%dMB）", fh.Filename, maxUploadSize/(1<<20))})
				return
			}

			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("ファイルの読み取りに失敗しました: %s", fh.Filename)})
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("ファイルの読み取りに失敗しました: %s", fh.Filename)})
				return
			}

			items = append(items, BatchItem{Filename: fh.Filename, Data: data})
		}

		username := middleware.Username(c)
		log.Printf("バッチOCR処理を開始: user=%s, files=%d", username, len(items))

		result := processBatch(c.Request.Context(), s.engine, s.store, items, s.config.Workers)

		s.recordUsage(c, username, result)

		status := http.StatusOK
		if len(result.Failed) > 0 {
			status = http.StatusMultiStatus
		}
		log.Printf("バッチOCR処理を完了: user=%s, succeeded=%d, failed=%d", username, len(result.Succeeded), len(result.Failed))
		c.JSON(status, result)
	}
}

// recordUsage は統計サービスに処理実績を記録する。
// 記録の失敗はログに残すのみで、バッチ処理の結果には影響させない。
func (s *Server) recordUsage(c *gin.Context, username string, result BatchResult) {
	ctx := httpclient.WithUsername(c.Request.Context(), username)

	for _, r := range []recordUsageRequest{
		{Service: "ocr", Event: "image_processed", Count: len(result.Succeeded)},
		{Service: "ocr", Event: "image_failed", Count: len(result.Failed)},
	} {
		if r.Count == 0 {
			continue
		}
		if err := s.statsClient.PostJSON(ctx, "/stats/record", r, nil); err != nil {
			log.Printf("利用実績の記録に失敗: event=%s, error=%v", r.Event, err)
		}
	}
}
