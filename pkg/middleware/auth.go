// Package middleware 提供中间件
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/bacasendiri/pkg/auth"
	"github.com/yeisme/bacasendiri/pkg/configs"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
)

const identityKey = "identity"

type identityCtxKey struct{}

// AuthMiddleware 基于 Authorization: Bearer 的 JWT 认证。
//   - 校验通过后将 Identity 注入 gin.Context 与 request.Context
//   - 支持通过配置跳过某些路径（如 /metrics, /health）
//   - 缺失/非法/过期分别返回 MISSING_TOKEN / INVALID_TOKEN / TOKEN_EXPIRED.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			abortUnauthorized(c, types.CodeMissingToken, "authorization token is required")

			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthorized(c, types.CodeInvalidToken, "authorization header must use the Bearer scheme")

			return
		}

		identity, err := auth.Verify(strings.TrimSpace(token), &conf)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abortUnauthorized(c, types.CodeTokenExpired, "token expired")

				return
			}

			abortUnauthorized(c, types.CodeInvalidToken, "invalid token")

			return
		}

		c.Set(identityKey, identity)

		ctx := context.WithValue(c.Request.Context(), identityCtxKey{}, identity)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetIdentity 从 gin.Context 获取当前请求身份，未认证返回 nil.
func GetIdentity(c *gin.Context) *auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok2 := v.(*auth.Identity); ok2 {
			return id
		}
	}

	// 回退到 request context
	if v := c.Request.Context().Value(identityCtxKey{}); v != nil {
		if id, ok := v.(*auth.Identity); ok {
			return id
		}
	}

	return nil
}

// RequireAdmin 要求管理员角色，不满足则返回 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id == nil || !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				types.Fail(types.CodeForbidden, "admin role required"))

			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, types.Fail(code, message))
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
