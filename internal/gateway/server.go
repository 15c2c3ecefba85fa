package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/knaka256/ocrhub/pkg/middleware"
)

// Server はAPI GatewayサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// config はサービス設定。起動時に一度だけ構築される。
	config Config
	// httpClient はバックエンドへの転送に使用するHTTPクライアント。
	// タイムアウトはリクエストごとのコンテキストで制御する。
	httpClient *http.Client
}

// NewServer は新しいGatewayサーバーを生成する。
func NewServer(cfg Config) (*Server, error) {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := &Server{
		router:     router,
		config:     cfg,
		httpClient: &http.Client{},
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.config.Port))
}

// setupRoutes はAPIルーティングを設定する。
// 保護ルートはBearerAuthミドルウェアを適用したグループにまとめ、
// 認可判定をルートごとに重複させない。
func (s *Server) setupRoutes() {
	// 認証エンドポイント（認可不要・authサービスへ転送）
	auth := s.router.Group("/auth")
	{
		auth.POST("/register", s.handleProxy(s.config.AuthServiceURL, "/users"))
		auth.POST("/login", s.handleProxy(s.config.AuthServiceURL, "/token"))
	}

	// 認可必須のエンドポイント
	protected := s.router.Group("/")
	protected.Use(middleware.BearerAuth(s.config.JWTSecret))
	{
		protected.GET("/auth/me", s.handleProxy(s.config.AuthServiceURL, "/users/me"))
		protected.POST("/ocr/process", s.handleProxy(s.config.OCRServiceURL, "/process_image/"))
		protected.GET("/stats", s.handleProxy(s.config.StatsServiceURL, "/stats/"))
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// handleProxy は指定されたサービスにリクエストを転送するハンドラを返す。
func (s *Server) handleProxy(baseURL, path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		proxyURL := baseURL + path
		if c.Request.URL.RawQuery != "" {
			proxyURL += "?" + c.Request.URL.RawQuery
		}
		s.doProxy(c, c.Request.Method, proxyURL)
	}
}

// doProxy はリクエストをバックエンドサービスに転送する共通処理。
// ボディとContent-Type（マルチパート境界を含む）、Authorizationヘッダーを
// そのまま転送し、バックエンドのステータスとボディを改変せずに中継する。
// コンテキストは受信リクエストから派生させるため、クライアント切断時は
// 転送側の呼び出しも取り消される。
func (s *Server) doProxy(c *gin.Context, method, url string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.ProxyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "転送リクエストの作成に失敗しました"})
		return
	}

	// 元のリクエストヘッダーを転送
	req.Header.Set("Content-Type", c.GetHeader("Content-Type"))
	req.Header.Set("Authorization", c.GetHeader("Authorization"))
	if username := middleware.Username(c); username != "" {
		req.Header.Set("X-User-Name", username)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("転送タイムアウト: route=%s, backend=%s", c.FullPath(), url)
			c.JSON(http.StatusGatewayTimeout, gin.H{"detail": "バックエンドサービスが時間内に応答しませんでした"})
			return
		}
		log.Printf("転送エラー: route=%s, backend=%s, error=%v", c.FullPath(), url, err)
		c.JSON(http.StatusBadGateway, gin.H{"detail": "バックエンドサービスとの通信に失敗しました"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("転送レスポンス読み取りエラー: backend=%s, error=%v", url, err)
		c.JSON(http.StatusBadGateway, gin.H{"detail": "バックエンドレスポンスの読み取りに失敗しました"})
		return
	}

	// バックエンドの失敗ステータスもそのまま中継する（解釈・再試行はしない）
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, body)
}
