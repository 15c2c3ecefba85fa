// Package auth は認証サービスの内部実装を提供する。
//
// ユーザー登録、パスワード検証、アクセストークンの発行を担当する。
// パスワードはbcryptでソルト付きハッシュ化して保存し、平文は保持しない。
// 発行するトークンは自己検証型であり、gatewayサービスと共有する
// 秘密鍵で署名する。
package auth
