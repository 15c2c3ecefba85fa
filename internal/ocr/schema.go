package ocr

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。ocr_dataはスキーマ自由の構造化結果を
// シリアライズ済みJSONとして保持する。
const schema = `
CREATE TABLE IF NOT EXISTS image_results (
    id TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    ocr_data TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_image_results_filename
    ON image_results(filename);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
