// Package auth 提供 JWT 令牌的签发与校验，令牌携带 {id, name, email, role}.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yeisme/bacasendiri/pkg/configs"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	// ErrTokenExpired 令牌已过期.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid 令牌非法（签名错误、格式错误等）.
	ErrTokenInvalid = errors.New("token invalid")
)

// Identity 已认证的请求主体，业务层只依赖这个结构而不是原始令牌.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin 判断是否为管理员.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Claims JWT 负载.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Sign 为身份签发 HS256 令牌，有效期由配置决定（默认一天）.
func Sign(id Identity, cfg *configs.AuthConfig) (string, error) {
	now := time.Now()

	claims := Claims{
		Name:  id.Name,
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.GetTokenTTL())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify 校验令牌并还原身份.
func Verify(tokenString string, cfg *configs.AuthConfig) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return &Identity{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
