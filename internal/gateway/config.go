package gateway

import (
	"os"
	"strconv"
	"time"
)

// Config はgatewayサービスの設定。プロセス起動時に一度だけ構築し、
// 以降は参照のみとする。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// JWTSecret はトークン検証用の共有秘密鍵。authサービスと帯域外で共有する。
	JWTSecret string
	// AuthServiceURL は認証サービスのベースURL。
	AuthServiceURL string
	// OCRServiceURL は画像処理サービスのベースURL。
	OCRServiceURL string
	// StatsServiceURL は統計サービスのベースURL。
	StatsServiceURL string
	// ProxyTimeout はバックエンドへの転送1回あたりのタイムアウト。
	ProxyTimeout time.Duration
	// FrontendURL はCORSで許可するフロントエンドのオリジン。
	FrontendURL string
}

// defaultProxyTimeoutSeconds は転送タイムアウトのデフォルト値（秒）。
const defaultProxyTimeoutSeconds = 30

// LoadConfig は環境変数からgatewayサービスの設定を構築する。
// 未設定の項目にはデフォルト値を適用する。
func LoadConfig() Config {
	timeoutSeconds := defaultProxyTimeoutSeconds
	if v := os.Getenv("PROXY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeoutSeconds = n
		}
	}

	return Config{
		Port:            getEnvOr("PORT", "8000"),
		JWTSecret:       getEnvOr("JWT_SECRET", "dev-secret-key"),
		AuthServiceURL:  getEnvOr("AUTH_SERVICE_URL", "http://localhost:8001"),
		OCRServiceURL:   getEnvOr("OCR_SERVICE_URL", "http://localhost:8002"),
		StatsServiceURL: getEnvOr("STATS_SERVICE_URL", "http://localhost:8003"),
		ProxyTimeout:    time.Duration(timeoutSeconds) * time.Second,
		FrontendURL:     getEnvOr("FRONTEND_URL", "http://localhost:3000"),
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
