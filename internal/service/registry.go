package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

var (
	// ErrInvalidToolID means a tool ID has no service part.
	ErrInvalidToolID = errors.New("invalid tool ID format")
	// ErrServiceNotFound means no provider is registered for the service.
	ErrServiceNotFound = errors.New("service not found")
)

// Provider exposes a set of tools under one service ID.
type Provider interface {
	Definition() types.Service
	Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error)
}

// Stats summarises the catalog for health output.
type Stats struct {
	Services   int            `json:"total_services"`
	Tools      int            `json:"total_tools"`
	Categories map[string]int `json:"categories"`
}

// Registry routes tool calls to providers by service ID.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces the provider for its service ID.
func (r *Registry) Register(p Provider) error {
	id := p.Definition().ID
	if id == "" {
		return errors.New("service ID cannot be empty")
	}
	r.mu.Lock()
	r.providers[id] = p
	r.mu.Unlock()
	return nil
}

// Unregister removes a provider. Unknown IDs are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.providers, id)
	r.mu.Unlock()
}

// Get returns the provider registered under id.
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// definitions snapshots every definition, sorted by ID.
func (r *Registry) definitions() []types.Service {
	r.mu.RLock()
	defs := make([]types.Service, 0, len(r.providers))
	for _, p := range r.providers {
		defs = append(defs, p.Definition())
	}
	r.mu.RUnlock()

	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// List returns definitions sorted by ID, optionally limited to a category.
func (r *Registry) List(category *types.Category) []types.Service {
	defs := r.definitions()
	if category == nil {
		return defs
	}
	out := defs[:0]
	for _, d := range defs {
		if d.Category == *category {
			out = append(out, d)
		}
	}
	return out
}

// Discover ranks services against a free-text query and returns at most
// limit of them. Services that match nothing are left out.
func (r *Registry) Discover(query string, limit int) []types.Service {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || limit <= 0 {
		return []types.Service{}
	}

	type ranked struct {
		def   types.Service
		score int
	}
	var hits []ranked
	for _, def := range r.definitions() {
		if s := score(terms, keywords(def)); s > 0 {
			hits = append(hits, ranked{def, s})
		}
	}
	// definitions are ID-sorted, so a stable sort keeps ties in ID order
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]types.Service, 0, min(limit, len(hits)))
	for _, h := range hits[:min(limit, len(hits))] {
		out = append(out, h.def)
	}
	return out
}

// Execute routes "<service>.<tool>" to its provider. Routing failures come
// back both as a failed Result and as an error.
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	serviceID, _, ok := strings.Cut(toolID, ".")
	if !ok || serviceID == "" {
		res, _ := types.Fail(ErrInvalidToolID.Error())
		return res, fmt.Errorf("%w: %s", ErrInvalidToolID, toolID)
	}

	p, found := r.Get(serviceID)
	if !found {
		res, _ := types.Failf("service not found: %s", serviceID)
		return res, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}

	if params == nil {
		params = map[string]interface{}{}
	}
	return p.Execute(ctx, toolID, params, appCtx)
}

// Stats counts services, tools and services per category.
func (r *Registry) Stats() Stats {
	st := Stats{Categories: make(map[string]int)}
	for _, def := range r.definitions() {
		st.Services++
		st.Tools += len(def.Tools)
		st.Categories[string(def.Category)]++
	}
	return st
}

// Keyword weights used by Discover.
const (
	weightName       = 10
	weightDesc       = 5
	weightCapability = 3
	weightCategory   = 2
)

// keywords maps each searchable word of a definition to its best weight.
func keywords(def types.Service) map[string]int {
	kw := make(map[string]int)
	add := func(word string, w int) {
		word = strings.ToLower(word)
		if len(word) > 2 && kw[word] < w {
			kw[word] = w
		}
	}

	add(def.ID, weightName)
	for _, w := range strings.Fields(def.Name) {
		add(w, weightName)
	}
	for _, w := range strings.Fields(def.Description) {
		add(strings.Trim(w, ".,;:()"), weightDesc)
	}
	for _, c := range def.Capabilities {
		for _, w := range strings.Split(c, "_") {
			add(w, weightCapability)
		}
	}
	add(string(def.Category), weightCategory)
	return kw
}

func score(terms []string, kw map[string]int) int {
	total := 0
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		total += kw[t]
	}
	return total
}
