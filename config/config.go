package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Port     string `env:"PORT,default=8080"`
	GinMode  string `env:"GIN_MODE,default=debug"`
	DBDriver string `env:"DB_DRIVER,default=sqlite"`
	DBSource string `env:"DB_SOURCE,default=coffee.db"`

	SiteURL        string `env:"SITE_URL,default=http://localhost:3000"`
	RawOrigins     string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
	CookieSecure   bool   `env:"COOKIE_SECURE,default=false"`
	CheckoutPerMin int    `env:"CHECKOUT_RATE_PER_MINUTE,default=20"`

	MicroCMSServiceDomain string `env:"MICROCMS_SERVICE_DOMAIN"`
	MicroCMSAPIKey        string `env:"MICROCMS_API_KEY"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	GmailClientID     string `env:"GMAIL_CLIENT_ID"`
	GmailClientSecret string `env:"GMAIL_CLIENT_SECRET"`
	GmailRefreshToken string `env:"GMAIL_REFRESH_TOKEN"`
	GmailSender       string `env:"GMAIL_SENDER"`

	AdminJWTSecret string        `env:"ADMIN_JWT_SECRET"`
	AdminTokenTTL  time.Duration `env:"ADMIN_TOKEN_TTL,default=12h"`
	RawAdminEmails string        `env:"ADMIN_EMAILS"`
	AdminEmail     string        `env:"ADMIN_EMAIL"`
	AdminPassword  string        `env:"ADMIN_PASSWORD"`
}

// Load reads .env (when present) and decodes the environment into a Config.
// A missing .env file is not an error; the process environment is used as is.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		logrus.Warnf("Warning: .env file not loaded: %v", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode env: %w", err)
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "mysql" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return &cfg, nil
}

// AllowedOrigins returns the CORS allow-list.
func (c *Config) AllowedOrigins() []string {
	return parseList(c.RawOrigins, false)
}

// AdminEmails returns the lower-cased admin allow-list.
func (c *Config) AdminEmails() []string {
	return parseList(c.RawAdminEmails, true)
}

// StripeConfigured reports whether checkout sessions can be created.
func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}

func parseList(raw string, lower bool) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lower {
			part = strings.ToLower(part)
		}
		values = append(values, part)
	}
	return values
}
