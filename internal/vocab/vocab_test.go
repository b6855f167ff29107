package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSynonyms(t *testing.T) {
	v := Default()

	tests := []struct {
		a, b string
		want bool
	}{
		{"first", "given", true},
		{"given", "fname", true},
		{"surname", "last", true},
		{"mail", "email", true},
		{"cell", "phone", true},
		{"zip", "postal", true},
		{"first", "last", false},
		{"first", "first", false},
		{"unknown", "first", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, v.AreSynonyms(tt.a, tt.b), "%s/%s", tt.a, tt.b)
	}
	assert.True(t, v.HasSynonyms("dob"))
	assert.False(t, v.HasSynonyms("vin"))
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"yaml", FormatYAML, "synonyms:\n  - [Given, First]\nvehicle: [boat]\n"},
		{"toml", FormatTOML, "synonyms = [[\"given\", \"first\"]]\nvehicle = [\"boat\"]\n"},
		{"json", FormatJSON, `{"synonyms":[["given","first"]],"vehicle":["boat"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)

			assert.Equal(t, [][]string{{"given", "first"}}, v.Synonyms)
			assert.True(t, v.AreSynonyms("first", "given"))
			assert.False(t, v.AreSynonyms("mail", "email"))
			assert.Equal(t, []string{"boat"}, v.Vehicle)
			// Untouched sections keep their defaults.
			assert.Equal(t, Default().Person, v.Person)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("synonyms: {"), FormatYAML)
	assert.Error(t, err)

	_, err = Parse([]byte("{}"), Format("ini"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yml")
	require.NoError(t, os.WriteFile(path, []byte("address: [road]\n"), 0o644))

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"road"}, v.Address)

	_, err = Load(filepath.Join(dir, "vocab.ini"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
