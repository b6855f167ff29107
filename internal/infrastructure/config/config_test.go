package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ModeHeuristic, cfg.Matcher.Mode)
	assert.Equal(t, 0.3, cfg.Matcher.Threshold)
	assert.Equal(t, 20, cfg.Matcher.DelegateLimit)
	assert.Equal(t, 3, cfg.Delegate.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Filler.SettleDelay)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaultsMatchDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                  "9000",
		"LOG_LEVEL":             "debug",
		"MATCHER_MODE":          "delegated",
		"MATCHER_THRESHOLD":     "0.45",
		"DELEGATE_PROVIDER":     "gemini",
		"DELEGATE_API_KEY":      "k",
		"DELEGATE_BASE_BACKOFF": "1s",
		"FILL_SETTLE_DELAY":     "0s",
		"CLIPBOARD_DIR":         "/tmp/clip",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ModeDelegated, cfg.Matcher.Mode)
	assert.Equal(t, 0.45, cfg.Matcher.Threshold)
	assert.Equal(t, time.Second, cfg.Delegate.BaseBackoff)
	assert.Equal(t, time.Duration(0), cfg.Filler.SettleDelay)
	assert.Equal(t, "/tmp/clip", cfg.Clipboard.Dir)
	assert.True(t, cfg.Delegate.Configured())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad mode", "MATCHER_MODE", "psychic"},
		{"bad provider", "DELEGATE_PROVIDER", "carrier-pigeon"},
		{"threshold too high", "MATCHER_THRESHOLD", "1.5"},
		{"zero attempts", "DELEGATE_MAX_ATTEMPTS", "0"},
		{"not a duration", "FILL_SETTLE_DELAY", "soon"},
		{"zero burst", "RATE_LIMIT_BURST", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
			assert.NotNil(t, LoadOrDefault())
		})
	}
}

func TestDelegateConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  DelegateConfig
		want bool
	}{
		{"http without endpoint", DelegateConfig{Provider: ProviderHTTP}, false},
		{"http with endpoint", DelegateConfig{Provider: ProviderHTTP, Endpoint: "http://x"}, true},
		{"gemini without key", DelegateConfig{Provider: ProviderGemini}, false},
		{"gemini with key", DelegateConfig{Provider: ProviderGemini, APIKey: "k"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Configured())
		})
	}
}
