package types

import "time"

// SnapshotVersion is written into every snapshot's metadata.
const SnapshotVersion = "1.0.0"

// ExtractionMethod records how a snapshot was produced.
type ExtractionMethod string

const (
	ExtractionManual   ExtractionMethod = "manual"
	ExtractionDocument ExtractionMethod = "document"
	ExtractionForm     ExtractionMethod = "form"
)

// SnapshotMetadata describes a snapshot.
type SnapshotMetadata struct {
	ExtractionMethod ExtractionMethod `json:"extractionMethod" validate:"oneof=manual document form"`
	Version          string           `json:"version"`
	FieldCount       int              `json:"fieldsExtracted" validate:"gte=0"`
}

// ClipboardSnapshot is the full capture of one page. A newer snapshot
// replaces an older one; snapshots are never merged.
type ClipboardSnapshot struct {
	ID        string           `json:"id" validate:"required"`
	Timestamp time.Time        `json:"timestamp" validate:"required"`
	SourceURL string           `json:"sourceUrl"`
	Entities  []Entity         `json:"entities" validate:"dive"`
	Metadata  SnapshotMetadata `json:"metadata"`
}

// SourceFields flattens the snapshot into the ordered source field set for
// a fill. Fields toggled off, and fields of entities toggled off, are left
// out.
func (s *ClipboardSnapshot) SourceFields() []Field {
	if s == nil {
		return nil
	}
	var out []Field
	for _, e := range s.Entities {
		out = append(out, e.ActiveFields()...)
	}
	return out
}

// CountFields returns the number of fields across all entities.
func (s *ClipboardSnapshot) CountFields() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, e := range s.Entities {
		n += len(e.Fields)
	}
	return n
}

// SavedRecord is a snapshot kept under a user supplied identifier, such as
// a policy or customer number.
type SavedRecord struct {
	ID           string            `json:"id"`
	Identifier   string            `json:"identifier" validate:"required"`
	Snapshot     ClipboardSnapshot `json:"clipboardData"`
	LastAccessed time.Time         `json:"lastAccessed"`
}
