package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine はgosseract（Tesseract）によるEngineの実装。
type TesseractEngine struct {
	// languages は認識対象の言語（例: "fra", "eng"）。
	languages []string
}

// NewTesseractEngine は新しいTesseractエンジンを生成する。
func NewTesseractEngine(languages []string) *TesseractEngine {
	return &TesseractEngine{languages: languages}
}

// Recognize は画像バイト列に対してTesseractでOCRを実行する。
// クライアントは呼び出しごとに生成・破棄する。
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (OCRData, error) {
	select {
	case <-ctx.Done():
		return OCRData{}, ctx.Err()
	default:
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		return OCRData{}, fmt.Errorf("画像の設定に失敗: %w", err)
	}
	if len(e.languages) > 0 {
		if err := client.SetLanguage(e.languages...); err != nil {
			return OCRData{}, fmt.Errorf("言語の設定に失敗: %w", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return OCRData{}, fmt.Errorf("テキスト抽出に失敗: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return OCRData{}, fmt.Errorf("単語境界の取得に失敗: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			X:          b.Box.Min.X,
			Y:          b.Box.Min.Y,
			Width:      b.Box.Dx(),
			Height:     b.Box.Dy(),
		})
	}

	return OCRData{Text: text, Words: words}, nil
}
