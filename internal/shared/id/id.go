// Package id generates identifiers for clipboard objects.
//
// Identifiers are ULIDs, so snapshots and saved records sort by creation
// time. Each kind carries a short prefix (clip_, ent_, fld_, rec_) that
// keeps logs readable and stops a field ID passing for a snapshot ID.
package id

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type (
	SnapshotID string
	EntityID   string
	FieldID    string
	RecordID   string
)

const (
	SnapshotPrefix = "clip"
	EntityPrefix   = "ent"
	FieldPrefix    = "fld"
	RecordPrefix   = "rec"
)

func (v SnapshotID) String() string { return string(v) }
func (v EntityID) String() string   { return string(v) }
func (v FieldID) String() string    { return string(v) }
func (v RecordID) String() string   { return string(v) }

// Source mints ULIDs from one entropy stream. It is safe for concurrent
// use.
type Source struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewSource returns a source with monotonic crypto/rand entropy: IDs minted
// within the same millisecond still sort in creation order.
func NewSource() *Source {
	return &Source{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// NewSourceWithEntropy uses r as the random component, e.g. a seeded
// reader in tests.
func NewSourceWithEntropy(r io.Reader) *Source {
	return &Source{entropy: r}
}

// ULID mints a bare ULID.
func (s *Source) ULID() ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy)
}

// With mints "<prefix>_<ulid>".
func (s *Source) With(prefix string) string {
	return prefix + "_" + s.ULID().String()
}

var shared = NewSource()

func NewSnapshotID() SnapshotID { return SnapshotID(shared.With(SnapshotPrefix)) }
func NewEntityID() EntityID     { return EntityID(shared.With(EntityPrefix)) }
func NewFieldID() FieldID       { return FieldID(shared.With(FieldPrefix)) }
func NewRecordID() RecordID     { return RecordID(shared.With(RecordPrefix)) }

// Parse decodes the ULID part of an identifier, ignoring any prefix.
func Parse(s string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	return ulid.Parse(s)
}

// IsValid reports whether s parses as an identifier.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Timestamp returns the creation time encoded in s.
func Timestamp(s string) (time.Time, error) {
	u, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
