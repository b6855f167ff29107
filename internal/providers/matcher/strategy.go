package matcher

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/formclip/internal/providers/matcher/delegate"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
	"github.com/GriffinCanCode/formclip/internal/vocab"
)

// ErrMappingUnavailable means the delegate could not produce mappings
// after its retries. Delegated matching recovers from it by falling back.
var ErrMappingUnavailable = errors.New("mapping unavailable")

// Strategy computes mappings from source fields to target fields.
type Strategy interface {
	Name() string
	Match(ctx context.Context, sources, targets []types.Field) ([]types.FieldMapping, error)
}

// Config tunes both strategies.
type Config struct {
	Threshold     float64
	SynonymWeight float64
	// DelegateLimit caps how many sources and targets the delegate sees.
	DelegateLimit int
	// MinConfidence discards delegate proposals at or below it.
	MinConfidence float64
	Backoff       resilience.Backoff
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.3,
		SynonymWeight: 0.8,
		DelegateLimit: 20,
		MinConfidence: 0.6,
		Backoff: resilience.Backoff{
			Attempts: 3,
			Base:     500 * time.Millisecond,
			Max:      5 * time.Second,
		},
	}
}

// ConfigFrom builds a Config from application settings.
func ConfigFrom(m config.MatcherConfig, d config.DelegateConfig) Config {
	cfg := DefaultConfig()
	cfg.Threshold = m.Threshold
	cfg.SynonymWeight = m.SynonymWeight
	cfg.DelegateLimit = m.DelegateLimit
	cfg.MinConfidence = m.MinConfidence
	cfg.Backoff.Attempts = d.MaxAttempts
	cfg.Backoff.Base = d.BaseBackoff
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SynonymWeight <= 0 {
		c.SynonymWeight = def.SynonymWeight
	}
	if c.DelegateLimit <= 0 {
		c.DelegateLimit = def.DelegateLimit
	}
	if c.Backoff.Attempts < 1 {
		c.Backoff.Attempts = def.Backoff.Attempts
	}
	return c
}

// New returns the strategy for mode. Delegated mode without a configured
// client still works: every call falls back to the heuristic.
func New(mode string, cfg Config, client delegate.Client, v *vocab.Vocabulary, logger *zap.Logger, metrics *monitoring.Metrics) Strategy {
	h := NewHeuristic(cfg, v, logger, metrics)
	if mode != config.ModeDelegated {
		return h
	}
	if client == nil {
		client = delegate.Unconfigured{}
	}
	return NewDelegated(cfg, client, h, logger, metrics)
}
