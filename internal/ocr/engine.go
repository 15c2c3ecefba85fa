package ocr

import "context"

// Word はOCRで認識された単語1つを表す。
// 位置はピクセル座標で、原点は画像左上。
type Word struct {
	// Text は認識された文字列。
	Text string `json:"text"`
	// Confidence は認識の信頼度（0〜100）。
	Confidence float64 `json:"confidence"`
	// X, Y は単語の外接矩形の左上座標。
	X int `json:"x"`
	Y int `json:"y"`
	// Width, Height は単語の外接矩形の大きさ。
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OCRData は1枚の画像に対するOCRの構造化結果。
// スキーマ自由なブロブとしてそのまま永続化・返却される。
type OCRData struct {
	// Text は画像全体から抽出した平文テキスト。
	Text string `json:"text"`
	// Words は単語単位の認識結果。
	Words []Word `json:"words"`
}

// Engine はOCRエンジンの契約。画像1枚を受け取り構造化結果を返す。
// 本番ではTesseractEngineを使用し、テストではスタブに差し替える。
type Engine interface {
	// Recognize はエンコード済み画像バイト列に対してOCRを実行する。
	Recognize(ctx context.Context, image []byte) (OCRData, error)
}
