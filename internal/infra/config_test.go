package infra

import (
	"os"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	unsetEnv(t, "APP_ENV", "PORT", "POLL_INTERVAL", "POLL_MAX_ATTEMPTS", "SETTLE_DELAY", "GEMINI_VALIDATION_MODEL", "DATABASE_URL")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiValidationModel)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 90, cfg.PollMaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.SettleDelay)
	assert.False(t, cfg.JournalEnabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "1919")
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("POLL_MAX_ATTEMPTS", "0")
	t.Setenv("GEMINI_SYNTHETIC", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example ")
	t.Setenv("DATABASE_URL", "postgres://example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "1919", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Zero(t, cfg.PollMaxAttempts)
	assert.True(t, cfg.GeminiSynthetic)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.JournalEnabled())
}

func TestConfigValidateCollectsErrors(t *testing.T) {
	cfg := &Config{Port: "", PollInterval: 0, PollMaxAttempts: -1, SettleDelay: -time.Second}

	err := cfg.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 5)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}
