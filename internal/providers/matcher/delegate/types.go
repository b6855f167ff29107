package delegate

import (
	"context"
	"errors"
	"strconv"

	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

var (
	// ErrNotConfigured means no endpoint or credential is set. Delegated
	// matching is disabled; heuristic matching is unaffected.
	ErrNotConfigured = errors.New("semantic mapping delegate not configured")
	// ErrTransient marks failures worth retrying: network errors, 5xx and 429.
	ErrTransient = errors.New("semantic mapping delegate temporarily unavailable")
	// ErrMalformedResponse means the delegate answered with something that
	// is not a mapping list.
	ErrMalformedResponse = errors.New("malformed delegate response")
)

// FieldSummary is the part of a field the delegate sees. Values are left
// out; matching is by meaning, not content.
type FieldSummary struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Label string          `json:"label"`
	Type  types.FieldType `json:"type"`
}

// Summarize builds summaries for fields, keyed by position so ids stay
// unique even when a page reuses element ids.
func Summarize(prefix string, fields []types.Field) []FieldSummary {
	out := make([]FieldSummary, len(fields))
	for i, f := range fields {
		out[i] = FieldSummary{
			ID:    prefix + "_" + strconv.Itoa(i),
			Name:  f.Name,
			Label: f.Label,
			Type:  f.Type,
		}
	}
	return out
}

// Request is what a delegate is asked to map.
type Request struct {
	SourceFields []FieldSummary `json:"sourceFields"`
	TargetFields []FieldSummary `json:"targetFields"`
}

// Proposal is one suggested pairing.
type Proposal struct {
	SourceFieldID  string               `json:"sourceFieldId"`
	TargetFieldID  string               `json:"targetFieldId"`
	Transformation types.Transformation `json:"transformation"`
	Confidence     float64              `json:"confidence"`
}

// Response is the delegate's answer.
type Response struct {
	Mappings []Proposal `json:"mappings"`
}

// Client proposes mappings. Implementations wrap retryable failures with
// ErrTransient and return ErrNotConfigured when they cannot be called at all.
type Client interface {
	MapFields(ctx context.Context, req Request) (*Response, error)
}

// Unconfigured is the client used when no delegate is set up.
type Unconfigured struct{}

func (Unconfigured) MapFields(context.Context, Request) (*Response, error) {
	return nil, ErrNotConfigured
}
