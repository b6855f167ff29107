package clipboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// Provider exposes the clipboard service as tools.
type Provider struct {
	service *Service
}

// NewProvider creates a clipboard provider.
func NewProvider(service *Service) *Provider {
	return &Provider{service: service}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	htmlParam := types.Parameter{Name: "html", Type: "string", Description: "Page HTML", Required: true}
	snapshotParam := types.Parameter{Name: "snapshot", Type: "object", Description: "Snapshot to use instead of the current one", Required: false}
	identifierParam := types.Parameter{Name: "identifier", Type: "string", Description: "Record identifier such as a policy number", Required: true}

	return types.Service{
		ID:          "clipboard",
		Name:        "Form Clipboard",
		Description: "Copy form data from one page and fill it into another",
		Category:    types.CategoryClipboard,
		Capabilities: []string{
			"copy",
			"paste",
			"history",
			"saved_records",
		},
		Tools: []types.Tool{
			{
				ID:          "clipboard.copy",
				Name:        "Copy Form",
				Description: "Scan a page and keep its filled fields as the current snapshot",
				Parameters: []types.Parameter{
					htmlParam,
					{Name: "source_url", Type: "string", Description: "URL of the page", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "clipboard.paste",
				Name:        "Paste Form",
				Description: "Fill a page from a snapshot and return the filled HTML",
				Parameters:  []types.Parameter{htmlParam, snapshotParam},
				Returns:     "object",
			},
			{
				ID:          "clipboard.current",
				Name:        "Current Snapshot",
				Description: "Return the current snapshot",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "clipboard.clear",
				Name:        "Clear Clipboard",
				Description: "Drop the current snapshot",
				Parameters:  []types.Parameter{},
				Returns:     "boolean",
			},
			{
				ID:          "clipboard.history",
				Name:        "Record History",
				Description: "List records saved under an identifier, newest first",
				Parameters:  []types.Parameter{identifierParam},
				Returns:     "array",
			},
			{
				ID:          "clipboard.save",
				Name:        "Save Record",
				Description: "Save a snapshot under an identifier",
				Parameters:  []types.Parameter{identifierParam, snapshotParam},
				Returns:     "object",
			},
		},
	}
}

// Execute runs a clipboard operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "clipboard.copy":
		return p.copy(ctx, params, appCtx)
	case "clipboard.paste":
		return p.paste(ctx, params)
	case "clipboard.current":
		return p.current(ctx)
	case "clipboard.clear":
		return p.clear(ctx)
	case "clipboard.history":
		return p.history(ctx, params)
	case "clipboard.save":
		return p.save(ctx, params)
	default:
		return types.Failf("unknown tool: %s", toolID)
	}
}

func (p *Provider) copy(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	doc, err := documentParam(params)
	if err != nil {
		return types.Fail(err.Error())
	}

	sourceURL, _ := params["source_url"].(string)
	if sourceURL == "" && appCtx != nil {
		sourceURL = appCtx.SourceURL
	}

	snap, err := p.service.Copy(ctx, doc, sourceURL)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return types.Fail(ErrNoData.Error())
		}
		return types.Failf("copy failed: %v", err)
	}
	return types.Done(map[string]interface{}{"snapshot": snap})
}

func (p *Provider) paste(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	doc, err := documentParam(params)
	if err != nil {
		return types.Fail(err.Error())
	}
	snap, err := snapshotParam(params)
	if err != nil {
		return types.Fail(err.Error())
	}

	outcome, err := p.service.Paste(ctx, doc, snap)
	if err != nil {
		return types.Failf("paste failed: %v", err)
	}
	filled, err := doc.HTML()
	if err != nil {
		return types.Failf("render failed: %v", err)
	}
	return types.Done(map[string]interface{}{
		"outcome": outcome,
		"html":    filled,
	})
}

func (p *Provider) current(ctx context.Context) (*types.Result, error) {
	snap, err := p.service.Current(ctx)
	if err != nil {
		return types.Fail(err.Error())
	}
	return types.Done(map[string]interface{}{"snapshot": snap})
}

func (p *Provider) clear(ctx context.Context) (*types.Result, error) {
	if err := p.service.Clear(ctx); err != nil {
		return types.Failf("clear failed: %v", err)
	}
	return types.Done(map[string]interface{}{"cleared": true})
}

func (p *Provider) history(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	identifier, ok := types.StringArg(params, "identifier")
	if !ok {
		return types.Fail("identifier parameter required")
	}
	records, err := p.service.History(ctx, identifier)
	if err != nil {
		return types.Failf("history failed: %v", err)
	}
	return types.Done(map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

func (p *Provider) save(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	identifier, ok := types.StringArg(params, "identifier")
	if !ok {
		return types.Fail("identifier parameter required")
	}
	snap, err := snapshotParam(params)
	if err != nil {
		return types.Fail(err.Error())
	}
	rec, err := p.service.Save(ctx, identifier, snap)
	if err != nil {
		return types.Failf("save failed: %v", err)
	}
	return types.Done(map[string]interface{}{"record": rec})
}

func documentParam(params map[string]interface{}) (*dom.Document, error) {
	raw, ok := types.StringArg(params, "html")
	if !ok {
		return nil, errors.New("html parameter required")
	}
	doc, err := dom.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	return doc, nil
}

// snapshotParam decodes an optional snapshot given either as an object or
// as a JSON string. A missing parameter yields nil.
func snapshotParam(params map[string]interface{}) (*types.ClipboardSnapshot, error) {
	raw, ok := params["snapshot"]
	if !ok || raw == nil {
		return nil, nil
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case *types.ClipboardSnapshot:
		return v, nil
	default:
		encoded, err := sonic.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot parameter: %w", err)
		}
		data = encoded
	}

	var snap types.ClipboardSnapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot parameter: %w", err)
	}
	return &snap, nil
}
