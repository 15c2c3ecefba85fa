package ocr

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ImageResult は1枚の画像に対するOCR結果のレコード。
// 成功した画像ごとに1行作成され、失敗した画像は行を作らない。
type ImageResult struct {
	// ID はレコードの一意識別子（UUID）。
	ID string `json:"id"`
	// Filename はアップロード時のファイル名。
	Filename string `json:"filename"`
	// OCRData はシリアライズ済みの構造化OCR結果。
	OCRData json.RawMessage `json:"ocr_data"`
}

// ResultStore はOCR結果の永続化の契約。
// 画像ごとの書き込みは独立したトランザクションであり、
// 画像間の順序保証は行わない。
type ResultStore interface {
	// Save はOCR結果を1件保存する。
	Save(ctx context.Context, filename string, ocrData json.RawMessage) (ImageResult, error)
}

// Store はSQLiteによるResultStoreの実装。
type Store struct {
	db *sql.DB
}

// NewStore は新しいOCR結果ストアを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save はOCR結果を保存する。
func (s *Store) Save(ctx context.Context, filename string, ocrData json.RawMessage) (ImageResult, error) {
	result := ImageResult{
		ID:       uuid.New().String(),
		Filename: filename,
		OCRData:  ocrData,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO image_results (id, filename, ocr_data) VALUES (?, ?, ?)`,
		result.ID, result.Filename, string(result.OCRData),
	)
	if err != nil {
		return ImageResult{}, fmt.Errorf("OCR結果の保存に失敗: %w", err)
	}
	return result, nil
}
