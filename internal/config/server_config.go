package config

import (
	"fmt"
	"strings"
	"time"
)

type DevServerConfig interface {
	GetPort() string
	GetBotToken() string
	GetJWTSecret() string
	GetAgreementVersion() string
	GetTokenExpiry() time.Duration
	GetInitDataMaxAge() time.Duration
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
	GetRateLimit() int
}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (c mainConfig) GetPort() string {
	port := c.get("PORT", "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (c mainConfig) GetBotToken() string {
	return c.get("BOT_TOKEN", "")
}

func (c mainConfig) GetJWTSecret() string {
	return c.get("JWT_SECRET", "dev-secret")
}

func (c mainConfig) GetAgreementVersion() string {
	return c.get("AGREEMENT_VERSION", "1")
}

func (c mainConfig) GetTokenExpiry() time.Duration {
	return c.getDuration("TOKEN_EXPIRY", 1*time.Hour)
}

// GetInitDataMaxAge bounds auth_date freshness; zero disables the check
func (c mainConfig) GetInitDataMaxAge() time.Duration {
	return c.getDuration("INIT_DATA_MAX_AGE", 24*time.Hour)
}

func (c mainConfig) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range strings.Split(c.get("ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = nullValue{}
		}
	}
	return origins
}

func (c mainConfig) GetAllowedMethods() string {
	return "GET, POST, OPTIONS"
}

func (c mainConfig) GetAllowedHeaders() string {
	return "Content-Type, Authorization, X-Debug-Request, X-Request-ID"
}

// GetRateLimit is the number of API requests allowed per client IP per minute
func (c mainConfig) GetRateLimit() int {
	return c.getInt("RATE_LIMIT", 60)
}
