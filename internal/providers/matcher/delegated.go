package matcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/formclip/internal/providers/matcher/delegate"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

const (
	sourcePrefix = "src"
	targetPrefix = "tgt"
)

// Delegated asks a delegate for mappings and fills any gaps with the
// heuristic. A failing or unconfigured delegate turns every call into a
// heuristic match.
type Delegated struct {
	client   delegate.Client
	fallback *Heuristic
	cfg      Config
	breaker  *resilience.Breaker
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewDelegated creates a delegated matcher.
func NewDelegated(cfg Config, client delegate.Client, fallback *Heuristic, logger *zap.Logger, metrics *monitoring.Metrics) *Delegated {
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker := resilience.New("mapping-delegate", resilience.Settings{
		Threshold: 5,
		Cooldown:  30 * time.Second,
		// Only service trouble counts against the delegate.
		Failure: func(err error) bool {
			return errors.Is(err, delegate.ErrTransient)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &Delegated{
		client:   client,
		fallback: fallback,
		cfg:      cfg.withDefaults(),
		breaker:  breaker,
		logger:   logger,
		metrics:  metrics,
	}
}

func (d *Delegated) Name() string { return "delegated" }

// Match never fails because of the delegate; only context cancellation
// is returned.
func (d *Delegated) Match(ctx context.Context, sources, targets []types.Field) ([]types.FieldMapping, error) {
	cands := prepare(sources)
	if len(cands) == 0 || len(targets) == 0 {
		return nil, nil
	}

	capped := cands[:min(len(cands), d.cfg.DelegateLimit)]
	cappedTargets := targets[:min(len(targets), d.cfg.DelegateLimit)]

	timer := monitoring.NewTimer()
	resp, err := d.propose(ctx, capped, cappedTargets)
	d.metrics.RecordDelegateCall(timer.Elapsed(), err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, delegate.ErrNotConfigured) {
			d.logger.Debug("Delegate not configured, using heuristic")
		} else {
			d.logger.Warn("Delegate failed, using heuristic", zap.Error(err))
		}
		return d.fallback.Match(ctx, sources, targets)
	}

	accepted := d.accept(resp.Mappings, capped, cappedTargets)

	var mappings []types.FieldMapping
	for i, t := range targets {
		if m, ok := accepted[i]; ok {
			mappings = append(mappings, m)
			continue
		}
		if m, ok := d.fallback.matchTarget(cands, t); ok {
			mappings = append(mappings, m)
		}
	}

	d.logger.Debug("Delegated match",
		zap.Int("proposals", len(resp.Mappings)),
		zap.Int("accepted", len(accepted)),
		zap.Int("mappings", len(mappings)))
	return mappings, nil
}

// propose calls the delegate with bounded retry. Transient failures are
// retried; anything else ends the attempt at once.
func (d *Delegated) propose(ctx context.Context, sources []candidate, targets []types.Field) (*delegate.Response, error) {
	srcFields := make([]types.Field, len(sources))
	for i, c := range sources {
		srcFields[i] = c.field
	}
	req := delegate.Request{
		SourceFields: delegate.Summarize(sourcePrefix, srcFields),
		TargetFields: delegate.Summarize(targetPrefix, targets),
	}

	var resp *delegate.Response
	err := resilience.Retry(ctx, d.cfg.Backoff, func(ctx context.Context) error {
		err := d.breaker.Do(ctx, func(ctx context.Context) error {
			r, err := d.client.MapFields(ctx, req)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, delegate.ErrTransient):
			return err
		default:
			return resilience.Permanent(err)
		}
	})
	if err != nil {
		if errors.Is(err, delegate.ErrNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrMappingUnavailable, err)
	}
	return resp, nil
}

// accept keeps proposals above the confidence floor whose ids refer to
// fields that were sent, one per target, highest confidence first and
// earliest proposal on ties.
func (d *Delegated) accept(proposals []delegate.Proposal, sources []candidate, targets []types.Field) map[int]types.FieldMapping {
	out := make(map[int]types.FieldMapping)
	for _, p := range proposals {
		if p.Confidence <= d.cfg.MinConfidence || p.Confidence > 1 {
			continue
		}
		si, ok := parseIndex(p.SourceFieldID, sourcePrefix, len(sources))
		if !ok {
			continue
		}
		ti, ok := parseIndex(p.TargetFieldID, targetPrefix, len(targets))
		if !ok {
			continue
		}
		if prev, seen := out[ti]; seen && prev.Confidence >= p.Confidence {
			continue
		}

		src, tgt := sources[si].field, targets[ti]
		kind := p.Transformation
		if kind == "" || kind == types.TransformNone || !kind.Valid() {
			kind = TransformationFor(src.Type, tgt.Type)
		}
		out[ti] = types.FieldMapping{
			SourceFieldKey: src.Key(),
			SourceValue:    src.Value,
			TargetField:    tgt,
			Transformation: kind,
			Confidence:     p.Confidence,
		}
	}
	for _, m := range out {
		d.metrics.RecordMatch(d.Name(), MethodDelegate, m.Confidence)
	}
	return out
}

func parseIndex(id, prefix string, n int) (int, bool) {
	rest, ok := strings.CutPrefix(id, prefix+"_")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}
