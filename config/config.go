// Package config loads server configuration from environment variables.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything cmd/seclave needs to come up. The provider block
// defaults to Google's endpoints with a profile-only scope; leaving the
// client id empty disables the delegated sign-in routes.
type Config struct {
	Addr        string `env:"SECLAVE_ADDR"         envDefault:":3000"`
	DatabaseURL string `env:"SECLAVE_DATABASE_URL"`
	LogLevel    string `env:"SECLAVE_LOG_LEVEL"    envDefault:"info"`

	CookieName    string        `env:"SECLAVE_COOKIE_NAME"     envDefault:"seclave_session"`
	SessionMaxAge time.Duration `env:"SECLAVE_SESSION_MAX_AGE" envDefault:"24h"`

	ProviderClientID     string   `env:"SECLAVE_PROVIDER_CLIENT_ID"`
	ProviderClientSecret string   `env:"SECLAVE_PROVIDER_CLIENT_SECRET"`
	ProviderRedirectURL  string   `env:"SECLAVE_PROVIDER_REDIRECT_URL" envDefault:"http://localhost:3000/auth/provider/callback"`
	ProviderAuthURL      string   `env:"SECLAVE_PROVIDER_AUTH_URL"     envDefault:"https://accounts.google.com/o/oauth2/v2/auth"`
	ProviderTokenURL     string   `env:"SECLAVE_PROVIDER_TOKEN_URL"    envDefault:"https://oauth2.googleapis.com/token"`
	ProviderUserInfoURL  string   `env:"SECLAVE_PROVIDER_USERINFO_URL" envDefault:"https://openidconnect.googleapis.com/v1/userinfo"`
	ProviderScopes       []string `env:"SECLAVE_PROVIDER_SCOPES"       envSeparator:"," envDefault:"profile"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ProviderConfigured reports whether delegated sign-in can be enabled.
func (c Config) ProviderConfigured() bool {
	return c.ProviderClientID != "" && c.ProviderClientSecret != ""
}
