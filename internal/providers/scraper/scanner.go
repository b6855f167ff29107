package scraper

import (
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/shared/id"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// ErrNoControls means the document has nothing to scan. It is an empty
// result, not a failure of the scanner.
var ErrNoControls = errors.New("no form controls found")

// Mode selects what a scan is for.
type Mode int

const (
	// ModeExtract captures filled-in values; empty controls are dropped.
	ModeExtract Mode = iota
	// ModeTarget lists controls that can receive values, empty or not.
	ModeTarget
)

func (m Mode) String() string {
	if m == ModeTarget {
		return "target"
	}
	return "extract"
}

// ParseMode accepts "extract" or "target".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "extract":
		return ModeExtract, nil
	case "target":
		return ModeTarget, nil
	}
	return ModeExtract, fmt.Errorf("unknown scan mode %q", s)
}

const controlSelector = "input, select, textarea, [contenteditable]"

// Scanner produces fields from documents. It keeps no state between scans.
type Scanner struct {
	logger *zap.Logger
}

// NewScanner creates a scanner.
func NewScanner(logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{logger: logger}
}

// Scan returns the fields of doc in document order.
//
// Extraction scans controls inside <form> elements when the page has any,
// and every control otherwise. Target scans always cover the whole page
// and skip controls the user could not edit.
func (s *Scanner) Scan(doc *dom.Document, mode Mode) ([]types.Field, error) {
	if doc == nil {
		return nil, ErrNoControls
	}

	controls := s.controls(doc, mode)
	if len(controls) == 0 {
		s.logger.Debug("No controls in document", zap.String("mode", mode.String()))
		return nil, ErrNoControls
	}

	labels := newLabeler(doc)
	fields := make([]types.Field, 0, len(controls))
	unnamed := 0
	issued := make(map[string]bool, len(controls))

	for _, n := range controls {
		kind := dom.KindOf(n)
		if mode == ModeTarget && !fillable(n) {
			continue
		}

		value := readValue(n, kind)
		if mode == ModeExtract && value.IsEmpty() {
			continue
		}

		elemID := dom.AttrOr(n, "id", "")
		name := dom.AttrOr(n, "name", "")
		if name == "" {
			name = elemID
		}
		if name == "" {
			name = fmt.Sprintf("field_%d", unnamed)
			unnamed++
		}

		fieldID := elemID
		if fieldID == "" {
			fieldID = dom.AttrOr(n, "name", "")
		}
		if fieldID == "" {
			fieldID = id.NewFieldID().String()
		}
		fieldID = uniqueID(issued, fieldID)

		fields = append(fields, types.Field{
			ID:          fieldID,
			Name:        name,
			Label:       labels.label(n),
			Type:        kind,
			Value:       value,
			Locator:     dom.LocatorFor(n).String(),
			Required:    dom.HasAttr(n, "required") || dom.AttrOr(n, "aria-required", "") == "true",
			Validation:  dom.AttrOr(n, "pattern", ""),
			Placeholder: dom.AttrOr(n, "placeholder", ""),
			ToggleState: true,
			Editable:    !dom.IsReadOnly(n) && !dom.IsDisabled(n),
		})
	}

	s.logger.Debug("Scanned document",
		zap.String("mode", mode.String()),
		zap.Int("controls", len(controls)),
		zap.Int("fields", len(fields)))

	return fields, nil
}

func (s *Scanner) controls(doc *dom.Document, mode Mode) []*html.Node {
	q := doc.Query()
	scope := q.Selection
	if mode == ModeExtract {
		if forms := q.Find("form"); forms.Length() > 0 {
			scope = forms
		}
	}

	var out []*html.Node
	scope.Find(controlSelector).Each(func(_ int, sel *goquery.Selection) {
		if n := sel.Get(0); dom.IsControl(n) {
			out = append(out, n)
		}
	})
	return out
}

// fillable reports whether a target control accepts input.
func fillable(n *html.Node) bool {
	if dom.IsDisabled(n) {
		return false
	}
	switch dom.Tag(n) {
	case "input", "textarea":
		return !dom.IsReadOnly(n)
	}
	return true
}

// uniqueID returns base the first time and base_2, base_3 and so on
// after that. Radio and checkbox groups share one name.
func uniqueID(issued map[string]bool, base string) string {
	id := base
	for n := 2; issued[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	issued[id] = true
	return id
}
