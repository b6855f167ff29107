package matcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

func src(label, name, value string) types.Field {
	return types.Field{ID: name, Name: name, Label: label, Type: types.FieldText, Value: types.StringValue(value)}
}

func tgt(label, name string) types.Field {
	return types.Field{ID: name, Name: name, Label: label, Type: types.FieldText}
}

func heuristic() *Heuristic {
	return NewHeuristic(DefaultConfig(), nil, nil, nil)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"first", "name", "first", "name"}, Tokenize("First Name:", "first_name"))
	assert.Equal(t, []string{"prenom", "e", "mail"}, Tokenize("Prénom", "e-mail"))
	assert.Empty(t, Tokenize("", " - "))
	assert.Equal(t, []string{"given", "name"}, Tokenize("givenName"))
	assert.Equal(t, []string{"user", "ssn", "ssn", "number"}, Tokenize("userSSN", "SSNNumber"))
	assert.Equal(t, []string{"address2", "line"}, Tokenize("address2Line"))
}

func TestCamelCaseSourceMatchesLabel(t *testing.T) {
	source := types.Field{ID: "givenName", Name: "givenName", Label: "givenName", Type: types.FieldText, Value: types.StringValue("Jane")}
	target := types.Field{ID: "first_name", Name: "first_name", Label: "First Name", Type: types.FieldText}

	mappings, err := heuristic().Match(context.Background(), []types.Field{source}, []types.Field{target})
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, source.Key(), mappings[0].SourceFieldKey)
	assert.Greater(t, mappings[0].Confidence, 0.3)
}

func TestScore(t *testing.T) {
	s := heuristic().scorer

	assert.Equal(t, 1.0, s.score([]string{"a", "b"}, []string{"b", "a"}))
	assert.Equal(t, 0.0, s.score(nil, nil))
	assert.InDelta(t, 0.8, s.score([]string{"given"}, []string{"first"}), 1e-9)
	// each token pairs once: one "name" cannot satisfy two
	assert.InDelta(t, 2.0/3.0, s.score([]string{"name"}, []string{"name", "name"}), 1e-9)
	// exact pairs are taken before synonym pairs
	assert.InDelta(t, 2*1.8/4, s.score([]string{"first", "given"}, []string{"fname", "first"}), 1e-9)
}

func TestThresholdIsStrict(t *testing.T) {
	source := types.Field{
		ID: "s", Name: "echo", Label: "alpha bravo charlie delta",
		Type: types.FieldText, Value: types.StringValue("v"),
	}
	filler := "kilo lima mike november oscar papa quebec romeo sierra"

	// 5 source tokens, 15 target tokens, 3 shared: 2*3/20 = 0.3
	atThreshold := types.Field{ID: "t", Name: "yankee", Label: "zulu", Placeholder: "alpha bravo charlie " + filler + " tango"}
	// one fewer target token: 2*3/19 > 0.3
	above := types.Field{ID: "t", Name: "yankee", Label: "zulu", Placeholder: "alpha bravo charlie " + filler}

	h := heuristic()
	require.Equal(t, 0.3, h.scorer.score(Tokenize(source.Label, source.Name), Tokenize(atThreshold.Label, atThreshold.Name, atThreshold.Placeholder)))

	got, err := h.Match(context.Background(), []types.Field{source}, []types.Field{atThreshold})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = h.Match(context.Background(), []types.Field{source}, []types.Field{above})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 6.0/19.0, got[0].Confidence, 1e-9)
}

func TestSynonymCredit(t *testing.T) {
	got, err := heuristic().Match(context.Background(),
		[]types.Field{src("Given", "g", "Jane")},
		[]types.Field{tgt("First", "f")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.StringValue("Jane"), got[0].SourceValue)
	assert.InDelta(t, 0.4, got[0].Confidence, 1e-9)
}

func TestMatch(t *testing.T) {
	sources := []types.Field{
		src("Given Name", "given_name", "Jane"),
		src("Family Name", "family_name", "Public"),
		src("Email", "contact", "jane@example.com"),
		src("Organization", "o", "Acme"),
		src("Notes", "notes", ""),
	}

	tests := []struct {
		name       string
		target     types.Field
		wantValue  string
		wantConfidence float64
	}{
		{"synonym score", tgt("First Name", "first_name"), "Jane", 0},
		{"surname synonym", tgt("Surname", "last_name"), "Public", 0},
		{"exact name beats scoring", tgt("E-mail address", "email"), "jane@example.com", 1.0},
		{"keyword overlap", tgt("Org", "n"), "Acme", KeywordConfidence},
	}

	h := heuristic()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Match(context.Background(), sources, []types.Field{tt.target})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantValue, got[0].SourceValue.Text())
			assert.Equal(t, tt.target, got[0].TargetField)
			if tt.wantConfidence > 0 {
				assert.Equal(t, tt.wantConfidence, got[0].Confidence)
			} else {
				assert.Greater(t, got[0].Confidence, 0.3)
			}
		})
	}
}

func TestMatchSkipsEmptySourcesAndUnmatched(t *testing.T) {
	got, err := heuristic().Match(context.Background(),
		[]types.Field{src("Notes", "notes", "  ")},
		[]types.Field{tgt("Notes", "notes")})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = heuristic().Match(context.Background(),
		[]types.Field{src("Vehicle Identification", "vin", "1HG")},
		[]types.Field{tgt("Favourite Colour", "colour")})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnnamedAndGeneratedKeysDoNotMatch(t *testing.T) {
	got, err := heuristic().Match(context.Background(),
		[]types.Field{src(types.UnnamedLabel, "field_0", "x")},
		[]types.Field{tgt(types.UnnamedLabel, "field_0")})
	require.NoError(t, err)
	for _, m := range got {
		assert.NotEqual(t, 1.0, m.Confidence, "placeholder keys must not count as exact matches")
	}
}

func TestTieGoesToFirstSource(t *testing.T) {
	sources := []types.Field{
		src("Phone", "phone", "111"),
		src("Phone", "phone", "222"),
	}
	got, err := heuristic().Match(context.Background(), sources, []types.Field{tgt("Telephone", "tel")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "111", got[0].SourceValue.Text())
}

func TestMatchIsDeterministic(t *testing.T) {
	sources := []types.Field{
		src("First Name", "fname", "Jane"),
		src("Last Name", "lname", "Public"),
		src("Mobile", "cell", "5551234567"),
		src("Zip", "zip", "94110"),
	}
	targets := []types.Field{
		tgt("Given name", "given"),
		tgt("Surname", "surname"),
		tgt("Phone", "phone"),
		tgt("Postal code", "postal"),
		tgt("Comments", "comments"),
	}

	h := heuristic()
	first, err := h.Match(context.Background(), sources, targets)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := h.Match(context.Background(), sources, targets)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Len(t, first, 4)
}

func TestTransformationFor(t *testing.T) {
	tests := []struct {
		source, target types.FieldType
		want           types.Transformation
	}{
		{types.FieldDate, types.FieldText, types.TransformDate},
		{types.FieldText, types.FieldDate, types.TransformDate},
		{types.FieldDate, types.FieldDate, types.TransformNone},
		{types.FieldText, types.FieldTel, types.TransformPhone},
		{types.FieldTel, types.FieldTel, types.TransformNone},
		{types.FieldText, types.FieldSelect, types.TransformNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TransformationFor(tt.source, tt.target), "%s -> %s", tt.source, tt.target)
	}
}

func TestKeywordOverlap(t *testing.T) {
	assert.True(t, keywordOverlap("org", "organization"))
	assert.True(t, keywordOverlap("home phone", "phone home number"))
	assert.False(t, keywordOverlap("home phone", "phone"))
	assert.False(t, keywordOverlap("", "anything"))
	assert.False(t, keywordOverlap("name", ""))
}
