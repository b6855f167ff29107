package scraper

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// Highlight marks a scanned field on the page it came from.
type Highlight struct {
	FieldID string `json:"fieldId"`
	Label   string `json:"label"`
	Locator string `json:"locator"`
	Value   string `json:"value"`
	// Context is the markup around the control, sanitized for display.
	Context string `json:"context"`
}

// Highlighter builds overlay data for fields.
type Highlighter struct {
	sanitizer *bluemonday.Policy
}

// NewHighlighter creates a highlighter with a UGC sanitizing policy.
func NewHighlighter() *Highlighter {
	return &Highlighter{sanitizer: bluemonday.UGCPolicy()}
}

// Highlights resolves each field in doc. Fields whose locator no longer
// matches are left out.
func (h *Highlighter) Highlights(doc *dom.Document, fields []types.Field) []Highlight {
	out := make([]Highlight, 0, len(fields))
	for _, f := range fields {
		n, err := dom.Locator(f.Locator).Resolve(doc)
		if err != nil {
			continue
		}
		out = append(out, Highlight{
			FieldID: f.ID,
			Label:   f.Label,
			Locator: f.Locator,
			Value:   f.Value.Text(),
			Context: h.context(n),
		})
	}
	return out
}

func (h *Highlighter) context(n *html.Node) string {
	container := dom.Closest(n, "label")
	if container == nil {
		container = dom.ParentElement(n)
	}
	if container == nil {
		return ""
	}
	var b strings.Builder
	if err := html.Render(&b, container); err != nil {
		return ""
	}
	return strings.TrimSpace(h.sanitizer.Sanitize(b.String()))
}
