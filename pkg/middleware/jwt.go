package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/knaka256/ocrhub/pkg/token"
)

// contextKeyUsername はGinコンテキストに認証済みユーザー名を格納するキー。
const contextKeyUsername = "username"

// BearerAuth はBearerトークンをローカルに検証するGinミドルウェアを返す。
// 保護ルートに一律に適用する認可ガードであり、検証失敗時は401を返して
// 後続処理を行わない。検証に成功した場合、コンテキストに主体の
// ユーザー名を設定する。検証はネットワーク往復を伴わない。
func BearerAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Bearer トークン形式が不正です",
			})
			return
		}

		username, err := token.Verify(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "認証情報が無効です",
			})
			return
		}

		c.Set(contextKeyUsername, username)
		c.Next()
	}
}

// Username はGinコンテキストから認証済みユーザー名を取得する。
// BearerAuthミドルウェアが事前に適用されている必要がある。
func Username(c *gin.Context) string {
	v, _ := c.Get(contextKeyUsername)
	if username, ok := v.(string); ok {
		return username
	}
	return ""
}
