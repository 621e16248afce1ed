package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/user"
)

// Config holds the complete application configuration, loadable from
// environment variables (STORE_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	JWT         JWTConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Media       MediaConfig
	Graceful    GracefulConfig
}

// MediaConfig controls how stored media paths are turned into URLs.
type MediaConfig struct {
	// BaseURL is prefixed to relative thumbnail and photo paths in API
	// responses, e.g. a CDN origin. Empty leaves paths untouched.
	BaseURL string `usage:"Base URL for relative media paths" flag:"media-base-url"`
}

// JWTConfig holds the per-token-type signing secrets and lifetimes.
type JWTConfig struct {
	AccessSecret         string        `usage:"HMAC secret for access tokens" flag:"jwt-access-secret"`
	RefreshSecret        string        `usage:"HMAC secret for refresh tokens" flag:"jwt-refresh-secret"`
	VerifyEmailSecret    string        `usage:"HMAC secret for email verification tokens" flag:"jwt-verify-email-secret"`
	ForgotPasswordSecret string        `usage:"HMAC secret for password reset tokens" flag:"jwt-forgot-password-secret"`
	AccessTTL            time.Duration `default:"15m"   usage:"Access token lifetime"`
	RefreshTTL           time.Duration `default:"2400h" usage:"Refresh token lifetime"`
	VerifyEmailTTL       time.Duration `default:"168h"  usage:"Email verification token lifetime"`
	ForgotPasswordTTL    time.Duration `default:"168h"  usage:"Password reset token lifetime"`
}

// TokenConfig converts the loaded JWT settings into the signer's config.
func (c JWTConfig) TokenConfig() user.TokenConfig {
	return user.TokenConfig{
		AccessSecret:         []byte(c.AccessSecret),
		RefreshSecret:        []byte(c.RefreshSecret),
		VerifyEmailSecret:    []byte(c.VerifyEmailSecret),
		ForgotPasswordSecret: []byte(c.ForgotPasswordSecret),
		AccessTTL:            c.AccessTTL,
		RefreshTTL:           c.RefreshTTL,
		VerifyEmailTTL:       c.VerifyEmailTTL,
		ForgotPasswordTTL:    c.ForgotPasswordTTL,
	}
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORE",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set STORE_DATABASE_URL or DATABASE_URL")
	}
	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" ||
		cfg.JWT.VerifyEmailSecret == "" || cfg.JWT.ForgotPasswordSecret == "" {
		return nil, errors.New("all four STORE_JWT_*_SECRET values are required")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STORE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
