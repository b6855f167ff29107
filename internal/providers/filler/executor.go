package filler

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formclip/internal/providers/transform"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// Observer receives each field result as soon as it is known.
type Observer func(index int, result types.FieldResult)

// Executor applies mappings to documents. It holds no per-fill state and
// may be shared, but a single document must not be filled concurrently.
type Executor struct {
	notifier dom.Notifier
	opts     transform.Options
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewExecutor creates an executor. A nil notifier skips notifications.
func NewExecutor(notifier dom.Notifier, opts transform.Options, logger *zap.Logger, metrics *monitoring.Metrics) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		notifier: notifier,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
	}
}

// Fill applies mappings to doc in order.
func (e *Executor) Fill(ctx context.Context, doc *dom.Document, mappings []types.FieldMapping) types.FillOutcome {
	return e.FillObserved(ctx, doc, mappings, nil)
}

// FillObserved is Fill with a per-field callback. A failed field never
// stops the batch; a cancelled context fails the fields not yet reached.
func (e *Executor) FillObserved(ctx context.Context, doc *dom.Document, mappings []types.FieldMapping, observe Observer) types.FillOutcome {
	timer := monitoring.NewTimer()
	outcome := types.FillOutcome{
		Success:     true,
		TotalFields: len(mappings),
		Results:     make([]types.FieldResult, 0, len(mappings)),
		Failed:      []types.FieldResult{},
		Errors:      []string{},
	}

	for i, m := range mappings {
		var r types.FieldResult
		if err := ctx.Err(); err != nil {
			r = failure(m, err)
		} else {
			r = e.fillOne(ctx, doc, m)
		}

		outcome.Record(r)
		e.metrics.RecordFieldResult(string(m.TargetField.Type), r.OK)
		if observe != nil {
			observe(i, r)
		}
	}

	elapsed := timer.Elapsed()
	e.metrics.RecordFill(outcome.Success, elapsed)
	e.logger.Info("Fill complete",
		zap.Int("total", outcome.TotalFields),
		zap.Int("filled", outcome.FilledFields),
		zap.Int("failed", len(outcome.Failed)),
		zap.Duration("duration", elapsed))

	return outcome
}

func (e *Executor) fillOne(ctx context.Context, doc *dom.Document, m types.FieldMapping) types.FieldResult {
	target := m.TargetField
	n, err := dom.Locator(target.Locator).Resolve(doc)
	if err != nil {
		e.logger.Debug("Target not found", zap.String("locator", target.Locator), zap.Error(err))
		return failure(m, dom.ErrNotFound)
	}

	value := transform.Apply(m.Transformation, m.SourceValue, target, e.opts)
	written, err := assign(n, value)
	if err != nil {
		return failure(m, err)
	}

	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, doc, n); err != nil {
			// the value is in place; page handlers misbehaving is not a
			// failure of this field
			e.logger.Warn("Notification handlers failed",
				zap.String("field", target.Key()),
				zap.Error(err))
		}
	}

	return types.FieldResult{
		Field:   target.Key(),
		Locator: target.Locator,
		OK:      true,
		Value:   written,
	}
}

func failure(m types.FieldMapping, err error) types.FieldResult {
	return types.FieldResult{
		Field:   m.TargetField.Key(),
		Locator: m.TargetField.Locator,
		Error:   err.Error(),
	}
}
