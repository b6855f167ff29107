package clipboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formclip/internal/providers/filler"
	"github.com/GriffinCanCode/formclip/internal/providers/matcher"
	"github.com/GriffinCanCode/formclip/internal/providers/scraper"
	"github.com/GriffinCanCode/formclip/internal/shared/id"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// ErrNoData means a copy found nothing worth keeping.
var ErrNoData = errors.New("No form data found on this page")

// Service runs copy and paste against a store.
type Service struct {
	scanner  *scraper.Scanner
	grouper  *scraper.Grouper
	strategy matcher.Strategy
	executor *filler.Executor
	store    Store
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	now      func() time.Time
}

// NewService creates a service. A nil store keeps snapshots in memory.
func NewService(
	scanner *scraper.Scanner,
	grouper *scraper.Grouper,
	strategy matcher.Strategy,
	executor *filler.Executor,
	store Store,
	logger *zap.Logger,
	metrics *monitoring.Metrics,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewMemoryStore(0)
	}
	return &Service{
		scanner:  scanner,
		grouper:  grouper,
		strategy: strategy,
		executor: executor,
		store:    store,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Store returns the backing store.
func (s *Service) Store() Store { return s.store }

// Copy scans doc, groups the filled fields and saves the result as the
// current snapshot. sourceURL falls back to the document's own URL.
func (s *Service) Copy(ctx context.Context, doc *dom.Document, sourceURL string) (*types.ClipboardSnapshot, error) {
	fields, err := s.scanner.Scan(doc, scraper.ModeExtract)
	s.metrics.RecordScan(scraper.ModeExtract.String(), len(fields), err)
	if err != nil {
		if errors.Is(err, scraper.ErrNoControls) {
			return nil, fmt.Errorf("%w: %w", ErrNoData, err)
		}
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	entities := s.grouper.Group(fields)
	if len(entities) == 0 {
		return nil, ErrNoData
	}

	if sourceURL == "" && doc != nil {
		sourceURL = doc.URL()
	}
	snap := &types.ClipboardSnapshot{
		ID:        id.NewSnapshotID().String(),
		Timestamp: s.now(),
		SourceURL: sourceURL,
		Entities:  entities,
		Metadata: types.SnapshotMetadata{
			ExtractionMethod: types.ExtractionForm,
			Version:          types.SnapshotVersion,
		},
	}
	snap.Metadata.FieldCount = snap.CountFields()

	if err := s.store.SaveCurrent(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	s.metrics.RecordClipboardWrite("current")

	s.logger.Info("Clipboard filled",
		zap.String("snapshot", snap.ID),
		zap.String("source", sourceURL),
		zap.Int("entities", len(entities)),
		zap.Int("fields", snap.Metadata.FieldCount))
	return snap, nil
}

// Plan computes the mappings a paste would apply without touching doc.
// A nil snapshot means the current one.
func (s *Service) Plan(ctx context.Context, doc *dom.Document, snap *types.ClipboardSnapshot) ([]types.FieldMapping, error) {
	snap, err := s.resolve(ctx, snap)
	if err != nil {
		return nil, err
	}

	targets, err := s.scanner.Scan(doc, scraper.ModeTarget)
	s.metrics.RecordScan(scraper.ModeTarget.String(), len(targets), err)
	if err != nil {
		return nil, fmt.Errorf("scan target: %w", err)
	}

	mappings, err := s.strategy.Match(ctx, snap.SourceFields(), targets)
	if err != nil {
		return nil, fmt.Errorf("match fields: %w", err)
	}
	return mappings, nil
}

// Paste fills doc from snap, or from the current snapshot when snap is nil.
func (s *Service) Paste(ctx context.Context, doc *dom.Document, snap *types.ClipboardSnapshot) (types.FillOutcome, error) {
	return s.PasteObserved(ctx, doc, snap, nil)
}

// PasteObserved is Paste with a per-field callback.
func (s *Service) PasteObserved(ctx context.Context, doc *dom.Document, snap *types.ClipboardSnapshot, observe filler.Observer) (types.FillOutcome, error) {
	mappings, err := s.Plan(ctx, doc, snap)
	if err != nil {
		return types.FillOutcome{}, err
	}

	return s.Apply(ctx, doc, mappings, observe), nil
}

// Apply fills doc from mappings computed earlier by Plan.
func (s *Service) Apply(ctx context.Context, doc *dom.Document, mappings []types.FieldMapping, observe filler.Observer) types.FillOutcome {
	outcome := s.executor.FillObserved(ctx, doc, mappings, observe)
	s.logger.Info("Form filled",
		zap.Int("filled", outcome.FilledFields),
		zap.Int("total", outcome.TotalFields),
		zap.Bool("success", outcome.Success))
	return outcome
}

// Current returns the current snapshot.
func (s *Service) Current(ctx context.Context) (*types.ClipboardSnapshot, error) {
	return s.store.Current(ctx)
}

// Clear empties the current slot. Saved records are kept.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Save stores snap, or the current snapshot, under identifier.
func (s *Service) Save(ctx context.Context, identifier string, snap *types.ClipboardSnapshot) (*types.SavedRecord, error) {
	snap, err := s.resolve(ctx, snap)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.SaveRecord(ctx, identifier, snap)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordClipboardWrite("record")
	return rec, nil
}

// History lists the records saved under identifier, newest first.
func (s *Service) History(ctx context.Context, identifier string) ([]types.SavedRecord, error) {
	return s.store.SearchRecords(ctx, identifier)
}

func (s *Service) resolve(ctx context.Context, snap *types.ClipboardSnapshot) (*types.ClipboardSnapshot, error) {
	if snap == nil {
		return s.store.Current(ctx)
	}
	if err := Validate(snap); err != nil {
		return nil, err
	}
	return snap, nil
}
