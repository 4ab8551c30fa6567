package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

// Config represents application configuration loaded from environment variables.
// The Gemini credential is deliberately absent: it only ever arrives from the user.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"8080"`

	GeminiBaseURL         string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiValidationModel string        `env:"GEMINI_VALIDATION_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiRequestTimeout  time.Duration `env:"GEMINI_REQUEST_TIMEOUT" envDefault:"60s"`
	GeminiSynthetic       bool          `env:"GEMINI_SYNTHETIC" envDefault:"false"`
	ModelCatalogPath      string        `env:"MODEL_CATALOG_PATH"`

	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"10s"`
	PollMaxAttempts int           `env:"POLL_MAX_ATTEMPTS" envDefault:"90"`
	JobTimeout      time.Duration `env:"JOB_TIMEOUT" envDefault:"20m"`
	SettleDelay     time.Duration `env:"SETTLE_DELAY" envDefault:"100ms"`

	DefaultLocale  string   `env:"DEFAULT_LOCALE" envDefault:"en"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	DatabaseURL    string   `env:"DATABASE_URL"`

	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"5m"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	cfg.AllowedOrigins = lo.Compact(lo.Map(cfg.AllowedOrigins, func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(c.Port) == "" {
		result = multierror.Append(result, errors.New("PORT is required"))
	}
	if strings.TrimSpace(c.GeminiBaseURL) == "" && !c.GeminiSynthetic {
		result = multierror.Append(result, errors.New("GEMINI_BASE_URL is required"))
	}
	if c.PollInterval <= 0 {
		result = multierror.Append(result, fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval))
	}
	if c.PollMaxAttempts < 0 {
		result = multierror.Append(result, fmt.Errorf("POLL_MAX_ATTEMPTS must not be negative, got %d", c.PollMaxAttempts))
	}
	if c.JobTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("JOB_TIMEOUT must not be negative, got %s", c.JobTimeout))
	}
	if c.SettleDelay < 0 {
		result = multierror.Append(result, fmt.Errorf("SETTLE_DELAY must not be negative, got %s", c.SettleDelay))
	}
	return result.ErrorOrNil()
}

// JournalEnabled reports whether generation history is persisted.
func (c *Config) JournalEnabled() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}
