// Package stats は統計サービスの内部実装を提供する。
//
// 各サービスから記録された利用実績を集計し、イベント種別ごとの
// 合計値として提供する。
package stats
