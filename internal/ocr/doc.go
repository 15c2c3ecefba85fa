// Package ocr は画像処理サービスの内部実装を提供する。
//
// マルチパートフォームで受け取った画像バッチに対して1枚ずつ独立に
// OCRを実行し、構造化結果をSQLiteに永続化する。ある画像の失敗は
// 他の画像の処理を中断せず、成功と失敗を項目単位で区別して報告する。
package ocr
