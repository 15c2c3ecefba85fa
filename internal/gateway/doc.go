// Package gateway はAPI Gatewayサービスの内部実装を提供する。
//
// クライアント接続の終端、保護ルートでのBearerトークン検証、
// バックエンドサービスへのリクエスト転送を担当する。トークンは
// 自己検証型のため、認可判定は認証サービスへの問い合わせなしに
// ローカルで完結する。認可成功後は透過的なパススルーとして振る舞い、
// バックエンドのステータスとボディをそのまま中継する。
package gateway
