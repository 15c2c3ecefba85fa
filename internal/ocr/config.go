package ocr

import (
	"os"
	"strconv"
	"strings"
)

// Config は画像処理サービスの設定。プロセス起動時に一度だけ構築し、
// 以降は参照のみとする。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// JWTSecret はトークン検証用の共有秘密鍵。
	JWTSecret string
	// DBPath はSQLiteデータベースファイルのパス。
	DBPath string
	// Workers はバッチ内のOCR並列度の上限。
	Workers int
	// Languages はOCRの認識対象言語。
	Languages []string
	// StatsServiceURL は利用実績を記録する統計サービスのベースURL。
	StatsServiceURL string
}

// defaultWorkers はバッチ処理のデフォルト並列度。
const defaultWorkers = 4

// LoadConfig は環境変数から画像処理サービスの設定を構築する。
// 未設定の項目にはデフォルト値を適用する。
func LoadConfig() Config {
	workers := defaultWorkers
	if v := os.Getenv("OCR_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}

	// 例: "fra+eng" → ["fra", "eng"]
	languages := strings.Split(getEnvOr("OCR_LANGUAGES", "fra+eng"), "+")

	return Config{
		Port:            getEnvOr("PORT", "8002"),
		JWTSecret:       getEnvOr("JWT_SECRET", "dev-secret-key"),
		DBPath:          getEnvOr("OCR_DB_PATH", "/data/ocr.db"),
		Workers:         workers,
		Languages:       languages,
		StatsServiceURL: getEnvOr("STATS_SERVICE_URL", "http://localhost:8003"),
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
