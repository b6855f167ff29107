package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/GriffinCanCode/formclip/internal/shared/id"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

var (
	// ErrEmpty means no snapshot has been copied yet.
	ErrEmpty = errors.New("clipboard is empty")
	// ErrInvalidSnapshot wraps validation failures.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrInvalidIdentifier rejects record identifiers that cannot be stored.
	ErrInvalidIdentifier = errors.New("invalid record identifier")
)

// DefaultHistoryLimit bounds the records kept per identifier.
const DefaultHistoryLimit = 50

// Store persists the current snapshot and saved records.
type Store interface {
	SaveCurrent(ctx context.Context, snap *types.ClipboardSnapshot) error
	Current(ctx context.Context) (*types.ClipboardSnapshot, error)
	Clear(ctx context.Context) error
	SaveRecord(ctx context.Context, identifier string, snap *types.ClipboardSnapshot) (*types.SavedRecord, error)
	SearchRecords(ctx context.Context, identifier string) ([]types.SavedRecord, error)
}

var validate = validator.New()

// Validate checks a snapshot before it is stored or filled.
func Validate(snap *types.ClipboardSnapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	if err := validate.Struct(snap); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return nil
}

func checkIdentifier(identifier string) error {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" || trimmed == "." || trimmed == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}
	return nil
}

func newRecord(identifier string, snap *types.ClipboardSnapshot, at time.Time) *types.SavedRecord {
	return &types.SavedRecord{
		ID:           id.NewRecordID().String(),
		Identifier:   identifier,
		Snapshot:     *snap,
		LastAccessed: at,
	}
}

// newestFirst orders records by LastAccessed, most recent first.
func newestFirst(records []types.SavedRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastAccessed.After(records[j].LastAccessed)
	})
}

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	current *types.ClipboardSnapshot
	records map[string][]types.SavedRecord
	limit   int
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store. A limit of zero or less uses
// DefaultHistoryLimit.
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryStore{
		records: make(map[string][]types.SavedRecord),
		limit:   limit,
		now:     time.Now,
	}
}

func (s *MemoryStore) SaveCurrent(ctx context.Context, snap *types.ClipboardSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Validate(snap); err != nil {
		return err
	}
	cp := *snap
	s.mu.Lock()
	s.current = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Current(ctx context.Context) (*types.ClipboardSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrEmpty
	}
	cp := *s.current
	return &cp, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SaveRecord(ctx context.Context, identifier string, snap *types.ClipboardSnapshot) (*types.SavedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkIdentifier(identifier); err != nil {
		return nil, err
	}
	if err := Validate(snap); err != nil {
		return nil, err
	}

	rec := newRecord(identifier, snap, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([]types.SavedRecord{*rec}, s.records[identifier]...)
	newestFirst(list)
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	s.records[identifier] = list
	return rec, nil
}

func (s *MemoryStore) SearchRecords(ctx context.Context, identifier string) ([]types.SavedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.SavedRecord, len(s.records[identifier]))
	copy(out, s.records[identifier])
	return out, nil
}
