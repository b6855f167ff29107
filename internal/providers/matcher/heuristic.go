package matcher

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
	"github.com/GriffinCanCode/formclip/internal/vocab"
)

// Match methods, reported in metrics and logs.
const (
	MethodExact    = "exact"
	MethodScore    = "score"
	MethodKeyword  = "keyword"
	MethodDelegate = "delegate"
)

// KeywordConfidence is the confidence given to keyword overlap matches,
// which carry no score of their own.
const KeywordConfidence = 0.5

// candidate is a source field prepared for matching.
type candidate struct {
	field    types.Field
	tokens   []string
	labelKey string
	nameKey  string
}

// Heuristic matches by label and name similarity. It is safe for
// concurrent use.
type Heuristic struct {
	scorer    scorer
	threshold float64
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

// NewHeuristic creates a heuristic matcher. A nil vocabulary means
// vocab.Default().
func NewHeuristic(cfg Config, v *vocab.Vocabulary, logger *zap.Logger, metrics *monitoring.Metrics) *Heuristic {
	if v == nil {
		v = vocab.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Heuristic{
		scorer:    scorer{vocab: v, synonymWeight: cfg.SynonymWeight},
		threshold: cfg.Threshold,
		logger:    logger,
		metrics:   metrics,
	}
}

func (h *Heuristic) Name() string { return "heuristic" }

// Match never fails; the error is always nil.
func (h *Heuristic) Match(_ context.Context, sources, targets []types.Field) ([]types.FieldMapping, error) {
	cands := prepare(sources)
	if len(cands) == 0 {
		return nil, nil
	}

	var mappings []types.FieldMapping
	for _, t := range targets {
		if m, ok := h.matchTarget(cands, t); ok {
			mappings = append(mappings, m)
		}
	}
	return mappings, nil
}

// matchTarget tries, in order: a source whose label or name equals the
// target's, the best similarity score above the threshold, and keyword
// overlap on the raw labels.
func (h *Heuristic) matchTarget(cands []candidate, t types.Field) (types.FieldMapping, bool) {
	if c, ok := exactKey(cands, t); ok {
		return h.mapping(c, t, 1.0, MethodExact), true
	}

	tokens := fieldTokens(t)
	best, bestScore := -1, 0.0
	for i, c := range cands {
		// strictly greater keeps the first source on ties
		if s := h.scorer.score(c.tokens, tokens); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best >= 0 && bestScore > h.threshold {
		return h.mapping(cands[best], t, bestScore, MethodScore), true
	}

	if label := labelKey(t); label != "" {
		for _, c := range cands {
			if keywordOverlap(label, c.labelKey) || keywordOverlap(label, c.nameKey) {
				return h.mapping(c, t, KeywordConfidence, MethodKeyword), true
			}
		}
	}

	h.logger.Debug("No source for target",
		zap.String("target", t.Key()),
		zap.Float64("best_score", bestScore))
	return types.FieldMapping{}, false
}

func (h *Heuristic) mapping(c candidate, t types.Field, confidence float64, method string) types.FieldMapping {
	h.metrics.RecordMatch(h.Name(), method, confidence)
	return types.FieldMapping{
		SourceFieldKey: c.field.Key(),
		SourceValue:    c.field.Value,
		TargetField:    t,
		Transformation: TransformationFor(c.field.Type, t.Type),
		Confidence:     confidence,
	}
}

func exactKey(cands []candidate, t types.Field) (candidate, bool) {
	for _, key := range []string{labelKey(t), nameKey(t)} {
		if key == "" {
			continue
		}
		for _, c := range cands {
			if key == c.labelKey || key == c.nameKey {
				return c, true
			}
		}
	}
	return candidate{}, false
}

// prepare drops sources without a value and precomputes their keys.
func prepare(sources []types.Field) []candidate {
	out := make([]candidate, 0, len(sources))
	for _, f := range sources {
		if f.Value.IsEmpty() {
			continue
		}
		out = append(out, candidate{
			field:    f,
			tokens:   fieldTokens(f),
			labelKey: labelKey(f),
			nameKey:  nameKey(f),
		})
	}
	return out
}

// fieldTokens tokenizes what describes f, leaving out the placeholder
// label and generated name the scanner uses when the page offers nothing.
// Tokens come from the original casing so camelCase names still split.
func fieldTokens(f types.Field) []string {
	return Tokenize(labelText(f), nameText(f), f.Placeholder)
}

// labelText is the trimmed label, or "" when the scanner found none.
func labelText(f types.Field) string {
	if f.Label == types.UnnamedLabel {
		return ""
	}
	return strings.TrimSpace(f.Label)
}

// nameText is the trimmed name, or "" for names the scanner generated.
func nameText(f types.Field) string {
	name := strings.TrimSpace(f.Name)
	if isGeneratedName(strings.ToLower(name)) {
		return ""
	}
	return name
}

func labelKey(f types.Field) string { return strings.ToLower(labelText(f)) }

func nameKey(f types.Field) string { return strings.ToLower(nameText(f)) }

func isGeneratedName(name string) bool {
	digits, ok := strings.CutPrefix(name, "field_")
	if !ok || digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
