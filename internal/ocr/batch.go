package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	// デコード検証用に副作用インポートする。
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"

	"golang.org/x/sync/errgroup"
)

// 項目単位の失敗理由。レスポンスのfailedエントリにそのまま載る。
const (
	// ReasonUnreadableImage は画像のデコード失敗。
	ReasonUnreadableImage = "unreadable_image"
	// ReasonOCRFailure はOCRエンジンの実行失敗。
	ReasonOCRFailure = "ocr_failure"
	// ReasonPersistenceFailure はOCR結果の保存失敗。
	ReasonPersistenceFailure = "persistence_failure"
)

// BatchItem はバッチ内の1画像（ファイル名とエンコード済みバイト列）。
type BatchItem struct {
	// Filename はアップロード時のファイル名。
	Filename string
	// Data はエンコード済み画像バイト列。
	Data []byte
}

// SucceededItem はバッチ内で処理に成功した1画像の結果。
type SucceededItem struct {
	// Filename はアップロード時のファイル名。
	Filename string `json:"filename"`
	// OCRData は構造化OCR結果。
	OCRData json.RawMessage `json:"ocr_data"`
}

// FailedItem はバッチ内で処理に失敗した1画像の詳細。
type FailedItem struct {
	// Filename はアップロード時のファイル名。
	Filename string `json:"filename"`
	// Reason は失敗理由（unreadable_image / ocr_failure / persistence_failure）。
	Reason string `json:"reason"`
}

// BatchResult はバッチ全体の処理結果。成功と失敗を項目単位で区別し、
// どちらも入力順を保持する。
type BatchResult struct {
	Succeeded []SucceededItem `json:"succeeded"`
	Failed    []FailedItem    `json:"failed"`
}

// itemOutcome は1画像の処理結果。成功時はresult、失敗時はreasonを持つ。
type itemOutcome struct {
	result SucceededItem
	reason string
}

// processBatch はバッチ内の各画像を独立に処理する。ある画像の失敗は
// 処理済みの結果を破棄せず、残りの画像の処理も中断しない。
// 並列度はworkersで制限し、結果は入力順に集約する。
func processBatch(ctx context.Context, engine Engine, store ResultStore, items []BatchItem, workers int) BatchResult {
	outcomes := make([]itemOutcome, len(items))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			outcomes[i] = processItem(ctx, engine, store, item)
			return nil
		})
	}
	// 各goroutineはエラーを返さないため、Waitは完了待ちのみ。
	_ = g.Wait()

	result := BatchResult{
		Succeeded: []SucceededItem{},
		Failed:    []FailedItem{},
	}
	for i, o := range outcomes {
		if o.reason != "" {
			result.Failed = append(result.Failed, FailedItem{
				Filename: items[i].Filename,
				Reason:   o.reason,
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, o.result)
	}
	return result
}

// processItem は1画像をデコード検証・OCR・永続化の順に処理する。
func processItem(ctx context.Context, engine Engine, store ResultStore, item BatchItem) itemOutcome {
	if _, _, err := image.Decode(bytes.NewReader(item.Data)); err != nil {
		log.Printf("画像のデコードに失敗: filename=%s, error=%v", item.Filename, err)
		return itemOutcome{reason: ReasonUnreadableImage}
	}

	data, err := engine.Recognize(ctx, item.Data)
	if err != nil {
		log.Printf("OCRの実行に失敗: filename=%s, error=%v", item.Filename, err)
		return itemOutcome{reason: ReasonOCRFailure}
	}

	ocrJSON, err := json.Marshal(data)
	if err != nil {
		log.Printf("OCR結果のシリアライズに失敗: filename=%s, error=%v", item.Filename, err)
		return itemOutcome{reason: ReasonPersistenceFailure}
	}

	if _, err := store.Save(ctx, item.Filename, ocrJSON); err != nil {
		log.Printf("OCR結果の保存に失敗: filename=%s, error=%v", item.Filename, err)
		return itemOutcome{reason: ReasonPersistenceFailure}
	}

	return itemOutcome{result: SucceededItem{
		Filename: item.Filename,
		OCRData:  ocrJSON,
	}}
}
