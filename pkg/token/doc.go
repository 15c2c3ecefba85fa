// Package token はJWTアクセストークンの発行と検証を提供する。
//
// トークンは自己検証型（self-verifying）であり、共有秘密鍵と
// トークン自身の署名済み内容だけで検証できる。authサービスが発行し、
// gatewayサービスとauthサービスがネットワーク往復なしでローカルに検証する。
package token
