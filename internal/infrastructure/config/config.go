package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Matcher modes.
const (
	ModeHeuristic = "heuristic"
	ModeDelegated = "delegated"
)

// Delegate providers.
const (
	ProviderHTTP   = "http"
	ProviderGemini = "gemini"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	Matcher   MatcherConfig
	Delegate  DelegateConfig
	Filler    FillerConfig
	Clipboard ClipboardConfig
	Browser   BrowserConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string   `envconfig:"PORT" default:"8000"`
	Host         string   `envconfig:"HOST" default:"0.0.0.0"`
	AllowOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
	MaxBodyBytes int64    `envconfig:"MAX_BODY_BYTES" default:"5242880"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MatcherConfig tunes field matching.
type MatcherConfig struct {
	Mode           string  `envconfig:"MATCHER_MODE" default:"heuristic"`
	Threshold      float64 `envconfig:"MATCHER_THRESHOLD" default:"0.3"`
	SynonymWeight  float64 `envconfig:"MATCHER_SYNONYM_WEIGHT" default:"0.8"`
	DelegateLimit  int     `envconfig:"MATCHER_DELEGATE_LIMIT" default:"20"`
	MinConfidence  float64 `envconfig:"MATCHER_MIN_CONFIDENCE" default:"0.6"`
	VocabularyFile string  `envconfig:"MATCHER_VOCABULARY"`
}

// DelegateConfig configures the external mapping service.
type DelegateConfig struct {
	Provider    string        `envconfig:"DELEGATE_PROVIDER" default:"http"`
	Endpoint    string        `envconfig:"DELEGATE_ENDPOINT"`
	APIKey      string        `envconfig:"DELEGATE_API_KEY"`
	Model       string        `envconfig:"DELEGATE_MODEL" default:"gemini-1.5-flash"`
	Timeout     time.Duration `envconfig:"DELEGATE_TIMEOUT" default:"30s"`
	MaxAttempts int           `envconfig:"DELEGATE_MAX_ATTEMPTS" default:"3"`
	BaseBackoff time.Duration `envconfig:"DELEGATE_BASE_BACKOFF" default:"500ms"`
	RateLimit   float64       `envconfig:"DELEGATE_RATE_LIMIT" default:"2"`
}

// Configured reports whether the delegate has enough settings to be called.
func (d DelegateConfig) Configured() bool {
	switch d.Provider {
	case ProviderGemini:
		return d.APIKey != ""
	default:
		return d.Endpoint != ""
	}
}

// FillerConfig holds fill executor settings.
type FillerConfig struct {
	SettleDelay time.Duration `envconfig:"FILL_SETTLE_DELAY" default:"50ms"`
	RunScripts  bool          `envconfig:"FILL_RUN_SCRIPTS" default:"true"`
	DateLayout  string        `envconfig:"FILL_DATE_LAYOUT" default:"MM/DD/YYYY"`
}

// ClipboardConfig holds clipboard storage settings.
type ClipboardConfig struct {
	Dir          string `envconfig:"CLIPBOARD_DIR"`
	HistoryLimit int    `envconfig:"CLIPBOARD_HISTORY_LIMIT" default:"50"`
}

// BrowserConfig controls headless rendering of live pages.
type BrowserConfig struct {
	Enabled bool          `envconfig:"BROWSER_ENABLED" default:"false"`
	Timeout time.Duration `envconfig:"BROWSER_TIMEOUT" default:"30s"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks value ranges that envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Matcher.Mode {
	case ModeHeuristic, ModeDelegated:
	default:
		return fmt.Errorf("invalid matcher mode %q", c.Matcher.Mode)
	}
	switch c.Delegate.Provider {
	case ProviderHTTP, ProviderGemini:
	default:
		return fmt.Errorf("invalid delegate provider %q", c.Delegate.Provider)
	}
	if c.Matcher.Threshold < 0 || c.Matcher.Threshold >= 1 {
		return fmt.Errorf("matcher threshold must be in [0,1): %v", c.Matcher.Threshold)
	}
	if c.Matcher.DelegateLimit <= 0 {
		return fmt.Errorf("delegate limit must be positive: %d", c.Matcher.DelegateLimit)
	}
	if c.Delegate.MaxAttempts < 1 {
		return fmt.Errorf("delegate attempts must be at least 1: %d", c.Delegate.MaxAttempts)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs positive rps and burst: %d/%d", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}
	if c.Filler.SettleDelay < 0 {
		return fmt.Errorf("settle delay must not be negative: %v", c.Filler.SettleDelay)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8000",
			Host:         "0.0.0.0",
			AllowOrigins: []string{"*"},
			MaxBodyBytes: 5 << 20,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Matcher: MatcherConfig{
			Mode:          ModeHeuristic,
			Threshold:     0.3,
			SynonymWeight: 0.8,
			DelegateLimit: 20,
			MinConfidence: 0.6,
		},
		Delegate: DelegateConfig{
			Provider:    ProviderHTTP,
			Model:       "gemini-1.5-flash",
			Timeout:     30 * time.Second,
			MaxAttempts: 3,
			BaseBackoff: 500 * time.Millisecond,
			RateLimit:   2,
		},
		Filler: FillerConfig{
			SettleDelay: 50 * time.Millisecond,
			RunScripts:  true,
			DateLayout:  "MM/DD/YYYY",
		},
		Clipboard: ClipboardConfig{
			HistoryLimit: 50,
		},
		Browser: BrowserConfig{
			Timeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}
