package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuer はトークンの発行者名。
const issuer = "ocrhub-auth"

// ErrInvalidToken は署名不正・ペイロード不正・期限切れのいずれかで
// トークンが検証に失敗したことを表す。
var ErrInvalidToken = errors.New("トークンが無効です")

// Claims はアクセストークンのクレーム（ペイロード）を表す。
// Subjectにユーザー名を格納し、サービス間で認証済み識別子として伝播する。
type Claims struct {
	jwt.RegisteredClaims
}

// Issue はユーザー名を主体とするHS256署名付きアクセストークンを発行する。
// ttlで指定した期間が経過するとトークンは暗黙的に失効する。
func Issue(secret, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("アクセストークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はアクセストークンを検証し、主体のユーザー名を返す。
// 署名検証・ペイロード解析・有効期限のいずれかに失敗した場合は
// ErrInvalidTokenをラップしたエラーを返す。DBアクセスを伴わない純粋な検証。
func Verify(secret, tokenString string) (string, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !t.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
