package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

const (
	currentFile = "current.json.zst"
	recordsDir  = "records"
	recordExt   = ".json.zst"

	// Record file names sort by time.
	recordLayout = "20060102T150405.000000000Z"
)

// FileStore keeps snapshots as zstd-compressed JSON under a directory:
//
//	<dir>/current.json.zst
//	<dir>/records/<identifier>/<timestamp>.json.zst
//
// Writes go through a temp file and a rename, so a reader never sees a
// partial file.
type FileStore struct {
	dir     string
	limit   int
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *zap.Logger
	mu      sync.Mutex
	now     func() time.Time
}

// NewFileStore opens (and creates) a store rooted at dir.
func NewFileStore(dir string, limit int, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("clipboard directory required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if err := os.MkdirAll(filepath.Join(dir, recordsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create clipboard directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &FileStore{
		dir:     dir,
		limit:   limit,
		encoder: enc,
		decoder: dec,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Close releases the codec resources.
func (s *FileStore) Close() error {
	s.decoder.Close()
	return s.encoder.Close()
}

// Dir returns the root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) SaveCurrent(ctx context.Context, snap *types.ClipboardSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Validate(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(filepath.Join(s.dir, currentFile), snap)
}

func (s *FileStore) Current(ctx context.Context) (*types.ClipboardSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snap types.ClipboardSnapshot
	if err := s.read(filepath.Join(s.dir, currentFile), &snap); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	return &snap, nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(filepath.Join(s.dir, currentFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear clipboard: %w", err)
	}
	return nil
}

func (s *FileStore) SaveRecord(ctx context.Context, identifier string, snap *types.ClipboardSnapshot) (*types.SavedRecord, error) {
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
	dir := s.recordDir(identifier)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create record directory: %w", err)
	}
	name := rec.LastAccessed.UTC().Format(recordLayout) + recordExt
	if err := s.write(filepath.Join(dir, name), rec); err != nil {
		return nil, err
	}
	s.prune(dir)
	return rec, nil
}

func (s *FileStore) SearchRecords(ctx context.Context, identifier string) ([]types.SavedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkIdentifier(identifier); err != nil {
		return nil, err
	}

	names, err := recordFiles(s.recordDir(identifier))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []types.SavedRecord{}, nil
		}
		return nil, err
	}

	out := make([]types.SavedRecord, 0, len(names))
	for _, path := range names {
		var rec types.SavedRecord
		if err := s.read(path, &rec); err != nil {
			s.logger.Warn("Skipping unreadable record", zap.String("path", path), zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	newestFirst(out)
	return out, nil
}

func (s *FileStore) recordDir(identifier string) string {
	return filepath.Join(s.dir, recordsDir, url.PathEscape(identifier))
}

// prune removes the oldest records beyond the history limit.
func (s *FileStore) prune(dir string) {
	names, err := recordFiles(dir)
	if err != nil || len(names) <= s.limit {
		return
	}
	for _, path := range names[:len(names)-s.limit] {
		if err := os.Remove(path); err != nil {
			s.logger.Warn("Failed to prune record", zap.String("path", path), zap.Error(err))
		}
	}
}

// recordFiles lists record paths oldest first.
func recordFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func (s *FileStore) write(path string, v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	compressed := s.encoder.EncodeAll(data, nil)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *FileStore) read(path string, v interface{}) error {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", filepath.Base(path), err)
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
