// Package httpclient はサービス間通信用のHTTPクライアントを提供する。
//
// タイムアウト設定と、コンテキスト経由の認証済みユーザー名の伝播を持つ。
// ocrサービスがstatsサービスへ利用実績を記録する際に使用する。
package httpclient
