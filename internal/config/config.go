package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	AuthIssuer   string `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL  string `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience string `mapstructure:"AUTH_AUDIENCE"`

	// Reasoning backend (generative model used for urgency assessment).
	ReasoningAPIURL  string `mapstructure:"REASONING_API_URL"`
	ReasoningAPIKey  string `mapstructure:"REASONING_API_KEY"`
	ReasoningModel   string `mapstructure:"REASONING_MODEL"`
	ReasoningTimeout int    `mapstructure:"REASONING_TIMEOUT_SECONDS"`
	FallbackOnly     bool   `mapstructure:"FALLBACK_ONLY"`

	// Retrieval tuning.
	RetrievalCaseLimit int `mapstructure:"RETRIEVAL_CASE_LIMIT"`

	RequestTimeout int `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("REASONING_MODEL", "gemini-2.0-flash")
	v.SetDefault("REASONING_TIMEOUT_SECONDS", 20)
	v.SetDefault("RETRIEVAL_CASE_LIMIT", 3)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("REASONING_API_URL")
	v.BindEnv("REASONING_API_KEY")
	v.BindEnv("REASONING_MODEL")
	v.BindEnv("REASONING_TIMEOUT_SECONDS")
	v.BindEnv("FALLBACK_ONLY")
	v.BindEnv("RETRIEVAL_CASE_LIMIT")
	v.BindEnv("REQUEST_TIMEOUT_SECONDS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active, all requests get admin access.")
		log.Println("WARNING: Set ENV=production and configure AUTH_ISSUER for production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ReasoningTimeoutDuration returns the bounded timeout applied to every
// reasoning backend call.
func (c *Config) ReasoningTimeoutDuration() time.Duration {
	return time.Duration(c.ReasoningTimeout) * time.Second
}

// RequestTimeoutDuration returns the per-request deadline for the HTTP layer.
func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate checks that the configuration is safe to run. In production real
// JWT authentication must be configured, and the reasoning backend must either
// be configured or explicitly disabled: a triage service silently running on
// fallback scoring alone is a configuration mistake, not a degradation.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthIssuer == "" {
		return fmt.Errorf(
			"AUTH_ISSUER must be set when ENV is %q; refusing to start without authentication", c.Env)
	}
	if c.ReasoningAPIURL == "" && !c.FallbackOnly {
		return fmt.Errorf(
			"REASONING_API_URL is required unless FALLBACK_ONLY=true (rule-based scoring only)")
	}
	if c.ReasoningTimeout <= 0 {
		return fmt.Errorf("REASONING_TIMEOUT_SECONDS must be positive, got %d", c.ReasoningTimeout)
	}
	if c.RetrievalCaseLimit <= 0 {
		return fmt.Errorf("RETRIEVAL_CASE_LIMIT must be positive, got %d", c.RetrievalCaseLimit)
	}
	return nil
}
