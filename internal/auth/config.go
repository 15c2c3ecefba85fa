package auth

import (
	"os"
	"strconv"
	"time"
)

// Config は認証サービスの設定。プロセス起動時に一度だけ構築し、
// 以降は参照のみとする。ビジネスロジック内での環境変数の読み取りは行わない。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// JWTSecret はトークン署名用の共有秘密鍵。gatewayと帯域外で共有する。
	JWTSecret string
	// TokenTTL は発行するアクセストークンの有効期間。
	TokenTTL time.Duration
	// DBPath はSQLiteデータベースファイルのパス。
	DBPath string
}

// defaultTokenTTLMinutes はトークン有効期間のデフォルト値（分）。
const defaultTokenTTLMinutes = 60

// LoadConfig は環境変数から認証サービスの設定を構築する。
// 未設定の項目にはデフォルト値を適用する。
func LoadConfig() Config {
	ttlMinutes := defaultTokenTTLMinutes
	if v := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttlMinutes = n
		}
	}

	return Config{
		Port:      getEnvOr("PORT", "8001"),
		JWTSecret: getEnvOr("JWT_SECRET", "dev-secret-key"),
		TokenTTL:  time.Duration(ttlMinutes) * time.Minute,
		DBPath:    getEnvOr("AUTH_DB_PATH", "/data/auth.db"),
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
