package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultJWTSecret     = "change-me"   // 默认签名密钥（生产环境必须覆盖）
	DefaultTokenTTLHours = 24            // 令牌有效期（小时）
	DefaultSigningMethod = "HS256"       // 签名算法
	DefaultTokenIssuer   = "bacasendiri" // 令牌签发者
)

// AuthConfig JWT 认证配置。令牌携带 {id, email, role}，有效期默认一天.
type AuthConfig struct {
	Enabled       bool     `mapstructure:"enabled"`         // 开启认证校验
	Secret        string   `mapstructure:"secret"`          // HS256 签名密钥
	TokenTTLHours int      `mapstructure:"token_ttl_hours"` // 令牌有效期（小时）
	Issuer        string   `mapstructure:"issuer"`
	SkipPaths     []string `mapstructure:"skip_paths"` // 跳过认证的路径前缀（如 /metrics、/health）
}

// GetTokenTTL 返回令牌有效期作为 time.Duration.
func (c *AuthConfig) GetTokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.secret", DefaultJWTSecret)
	v.SetDefault("auth.token_ttl_hours", DefaultTokenTTLHours)
	v.SetDefault("auth.issuer", DefaultTokenIssuer)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/health",
	})
}
