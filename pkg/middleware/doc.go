// Package middleware は全サービスで共有するGinミドルウェアを提供する。
//
// Bearerトークン認可ガード（BearerAuth）、パニック回復（Recovery）、
// CORS設定（CORS）を含む。認可ガードは保護ルートに一律適用する
// 横断的関心事であり、ハンドラごとに検証処理を重複させない。
package middleware
