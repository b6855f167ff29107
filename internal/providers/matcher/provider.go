package matcher

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/providers/scraper"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// Provider exposes a strategy as tools.
type Provider struct {
	strategy Strategy
	scanner  *scraper.Scanner
}

// NewProvider creates a matcher provider.
func NewProvider(strategy Strategy, scanner *scraper.Scanner) *Provider {
	return &Provider{strategy: strategy, scanner: scanner}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "matcher",
		Name:        "Field Matcher",
		Description: "Map fields of one form onto fields of another",
		Category:    types.CategoryMatcher,
		Capabilities: []string{
			"field_mapping",
			"synonym_matching",
			p.strategy.Name(),
		},
		Tools: []types.Tool{
			{
				ID:          "matcher.map",
				Name:        "Map Fields",
				Description: "Scan a filled source page and an empty target page and propose mappings",
				Parameters: []types.Parameter{
					{Name: "source_html", Type: "string", Description: "Filled page", Required: true},
					{Name: "target_html", Type: "string", Description: "Page to fill", Required: true},
				},
				Returns: "array",
			},
		},
	}
}

// Execute runs a matcher operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if toolID != "matcher.map" {
		return types.Failf("unknown tool: %s", toolID)
	}

	sources, err := p.scan(params, "source_html", scraper.ModeExtract)
	if err != nil {
		return types.Fail(err.Error())
	}
	targets, err := p.scan(params, "target_html", scraper.ModeTarget)
	if err != nil {
		return types.Fail(err.Error())
	}

	mappings, err := p.strategy.Match(ctx, sources, targets)
	if err != nil {
		return types.Failf("match failed: %v", err)
	}
	return types.Done(map[string]interface{}{
		"mappings": mappings,
		"count":    len(mappings),
		"strategy": p.strategy.Name(),
	})
}

func (p *Provider) scan(params map[string]interface{}, key string, mode scraper.Mode) ([]types.Field, error) {
	raw, ok := types.StringArg(params, key)
	if !ok {
		return nil, fmt.Errorf("%s parameter required", key)
	}
	doc, err := dom.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	fields, err := p.scanner.Scan(doc, mode)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", key, err)
	}
	return fields, nil
}
