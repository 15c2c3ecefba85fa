package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/knaka256/ocrhub/pkg/middleware"
	"github.com/knaka256/ocrhub/pkg/token"
)

// Server は認証サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// config はサービス設定。起動時に一度だけ構築される。
	config Config
	// store はユーザー資格情報ストア。
	store *Store
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewServer は新しい認証サーバーを生成する。
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
	// ユーザー登録（登録成功時にトークンも発行する）
	s.router.POST("/users", s.handleCreateUser())
	// ログイン（トークン発行）
	s.router.POST("/token", s.handleIssueToken())
	// 認証済みユーザー自身の情報取得
	s.router.GET("/users/me", middleware.BearerAuth(s.config.JWTSecret), s.handleReadMe())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "auth"})
	})
}

// credentialsRequest は登録・ログイン共通のリクエストボディ。
type credentialsRequest struct {
	// Username はユーザー名。
	Username string `json:"username" binding:"required"`
	// Password は平文パスワード。保存前にハッシュ化される。
	Password string `json:"password" binding:"required"`
}

// tokenResponse はアクセストークンを含むレスポンス。
type tokenResponse struct {
	// AccessToken は署名付きアクセストークン。
	AccessToken string `json:"access_token"`
	// TokenType はトークン種別。常に"bearer"。
	TokenType string `json:"token_type"`
}

// handleCreateUser はユーザー登録を処理するハンドラを返す。
// 登録成功時は新規ユーザーのトークンを即時発行する（登録＝自動ログイン）。
func (s *Server) handleCreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "ユーザー名とパスワードが必要です"})
			return
		}

		user, err := s.store.Register(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, ErrDuplicateUsername) {
				log.Printf("ユーザー登録失敗: username=%s は既に登録済み", req.Username)
				c.JSON(http.StatusBadRequest, gin.H{"detail": "ユーザー名は既に登録されています"})
				return
			}
			log.Printf("ユーザー登録エラー: username=%s, error=%v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "ユーザーの登録に失敗しました"})
			return
		}

		accessToken, err := token.Issue(s.config.JWTSecret, user.Username, s.config.TokenTTL)
		if err != nil {
			log.Printf("トークン発行エラー: username=%s, error=%v", user.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "トークンの発行に失敗しました"})
			return
		}

		log.Printf("ユーザー登録成功: username=%s", user.Username)
		c.JSON(http.StatusOK, gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"access_token": accessToken,
			"token_type":   "bearer",
		})
	}
}

// handleIssueToken はログインとトークン発行を処理するハンドラを返す。
func (s *Server) handleIssueToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "ユーザー名とパスワードが必要です"})
			return
		}

		user, err := s.store.Verify(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				log.Printf("認証失敗: username=%s", req.Username)
				c.Header("WWW-Authenticate", "Bearer")
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "ユーザー名またはパスワードが正しくありません"})
				return
			}
			log.Printf("認証エラー: username=%s, error=%v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "認証処理に失敗しました"})
			return
		}

		accessToken, err := token.Issue(s.config.JWTSecret, user.Username, s.config.TokenTTL)
		if err != nil {
			log.Printf("トークン発行エラー: username=%s, error=%v", user.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "トークンの発行に失敗しました"})
			return
		}

		log.Printf("ログイン成功: username=%s", user.Username)
		c.JSON(http.StatusOK, tokenResponse{
			AccessToken: accessToken,
			TokenType:   "bearer",
		})
	}
}

// handleReadMe は認証済みユーザー自身の情報取得を処理するハンドラを返す。
// トークンの主体を現在のユーザーレコードに再解決するため、
// 削除済みユーザーのトークンは有効期限内でも401になる。
func (s *Server) handleReadMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := middleware.Username(c)

		user, err := s.store.GetByUsername(c.Request.Context(), username)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "認証情報が無効です"})
				return
			}
			log.Printf("ユーザー取得エラー: username=%s, error=%v", username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "ユーザーの取得に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}
