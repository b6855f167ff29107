package scraper

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
	"github.com/GriffinCanCode/formclip/internal/vocab"
)

// Provider exposes scanning and grouping as tools.
type Provider struct {
	scanner     *Scanner
	grouper     *Grouper
	highlighter *Highlighter
}

// NewProvider creates a scraper provider.
func NewProvider(v *vocab.Vocabulary, logger *zap.Logger) *Provider {
	return &Provider{
		scanner:     NewScanner(logger),
		grouper:     NewGrouper(v),
		highlighter: NewHighlighter(),
	}
}

// Scanner returns the provider's scanner.
func (p *Provider) Scanner() *Scanner { return p.scanner }

// Grouper returns the provider's grouper.
func (p *Provider) Grouper() *Grouper { return p.grouper }

// Highlighter returns the provider's highlighter.
func (p *Provider) Highlighter() *Highlighter { return p.highlighter }

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	htmlParam := types.Parameter{Name: "html", Type: "string", Description: "HTML content", Required: true}
	return types.Service{
		ID:          "scraper",
		Name:        "Form Scanner",
		Description: "Scan form controls into labeled, typed fields",
		Category:    types.CategoryScraper,
		Capabilities: []string{
			"form_scanning",
			"label_resolution",
			"entity_grouping",
			"charset_detection",
		},
		Tools: []types.Tool{
			{
				ID:          "scraper.scan",
				Name:        "Scan Fields",
				Description: "List form fields with labels, values and locators",
				Parameters: []types.Parameter{
					htmlParam,
					{Name: "mode", Type: "string", Description: "extract (default) or target", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "scraper.group",
				Name:        "Group Fields",
				Description: "Scan and group filled fields into entities",
				Parameters:  []types.Parameter{htmlParam},
				Returns:     "object",
			},
			{
				ID:          "scraper.highlights",
				Name:        "Field Highlights",
				Description: "Scan filled fields and return overlay data for each",
				Parameters:  []types.Parameter{htmlParam},
				Returns:     "object",
			},
		},
	}
}

// Execute routes a tool call.
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	raw, ok := types.StringArg(params, "html")
	if !ok {
		return types.Fail("html parameter required")
	}
	doc, err := dom.Parse(raw)
	if err != nil {
		return types.Failf("parse failed: %v", err)
	}

	switch toolID {
	case "scraper.scan":
		modeName, _ := types.StringArg(params, "mode")
		mode, err := ParseMode(modeName)
		if err != nil {
			return types.Fail(err.Error())
		}
		fields, err := p.scanner.Scan(doc, mode)
		if err != nil {
			return types.Fail(err.Error())
		}
		return types.Done(map[string]interface{}{"fields": fields, "count": len(fields)})

	case "scraper.group":
		fields, err := p.scanner.Scan(doc, ModeExtract)
		if err != nil {
			return types.Fail(err.Error())
		}
		return types.Done(map[string]interface{}{"entities": p.grouper.Group(fields)})

	case "scraper.highlights":
		fields, err := p.scanner.Scan(doc, ModeExtract)
		if err != nil {
			return types.Fail(err.Error())
		}
		return types.Done(map[string]interface{}{"highlights": p.highlighter.Highlights(doc, fields)})
	}

	return types.Failf("unknown tool: %s", toolID)
}
