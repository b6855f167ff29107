// Package vocab holds the word lists used to match and group fields: the
// synonym table consulted by the matcher and the keyword sets used by the
// entity grouper. The built-in lists can be replaced from a YAML, TOML or
// JSON file.
package vocab

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Vocabulary is the full set of word lists.
type Vocabulary struct {
	Synonyms [][]string `json:"synonyms" yaml:"synonyms" toml:"synonyms"`
	Person   []string   `json:"person" yaml:"person" toml:"person"`
	Vehicle  []string   `json:"vehicle" yaml:"vehicle" toml:"vehicle"`
	Address  []string   `json:"address" yaml:"address" toml:"address"`

	index map[string][]int
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	v := &Vocabulary{
		Synonyms: [][]string{
			{"first", "fname", "given", "firstname", "forename"},
			{"last", "lname", "surname", "family", "lastname"},
			{"middle", "mname", "middlename"},
			{"email", "mail", "emailaddress"},
			{"phone", "tel", "mobile", "cell", "telephone"},
			{"dob", "birthdate", "birthday", "birth"},
			{"ssn", "social"},
			{"zip", "postal", "zipcode", "postcode"},
			{"street", "addr", "address", "line1"},
			{"city", "town", "locality"},
			{"state", "province", "region"},
			{"sex", "gender"},
			{"plate", "registration", "tag"},
		},
		Person: []string{
			"name", "first", "last", "middle", "email", "phone", "birth", "dob",
			"gender", "ssn", "social", "suffix", "prefix", "maiden",
		},
		Vehicle: []string{
			"vehicle", "car", "vin", "make", "model", "year", "plate", "license plate",
		},
		Address: []string{
			"address", "street", "city", "state", "zip", "postal", "country",
		},
	}
	v.buildIndex()
	return v
}

// Format is a vocabulary file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported vocabulary file %q", path)
}

// Load reads a vocabulary file. Sections the file leaves empty keep their
// built-in values.
func Load(path string) (*Vocabulary, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes a vocabulary in the given format.
func Parse(data []byte, format Format) (*Vocabulary, error) {
	var parsed Vocabulary
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &parsed)
	case FormatTOML:
		err = toml.Unmarshal(data, &parsed)
	case FormatJSON:
		err = sonic.Unmarshal(data, &parsed)
	default:
		return nil, fmt.Errorf("unsupported vocabulary format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s vocabulary: %w", format, err)
	}

	v := Default()
	if len(parsed.Synonyms) > 0 {
		v.Synonyms = parsed.Synonyms
	}
	if len(parsed.Person) > 0 {
		v.Person = parsed.Person
	}
	if len(parsed.Vehicle) > 0 {
		v.Vehicle = parsed.Vehicle
	}
	if len(parsed.Address) > 0 {
		v.Address = parsed.Address
	}
	v.normalize()
	v.buildIndex()
	return v, nil
}

func (v *Vocabulary) normalize() {
	for i, group := range v.Synonyms {
		for j, w := range group {
			v.Synonyms[i][j] = strings.ToLower(strings.TrimSpace(w))
		}
	}
	for _, list := range [][]string{v.Person, v.Vehicle, v.Address} {
		for i, w := range list {
			list[i] = strings.ToLower(strings.TrimSpace(w))
		}
	}
}

func (v *Vocabulary) buildIndex() {
	v.index = make(map[string][]int)
	for i, group := range v.Synonyms {
		for _, w := range group {
			v.index[w] = append(v.index[w], i)
		}
	}
}

// AreSynonyms reports whether a and b are distinct words listed in the
// same synonym group.
func (v *Vocabulary) AreSynonyms(a, b string) bool {
	if a == b {
		return false
	}
	if v.index == nil {
		v.buildIndex()
	}
	for _, ga := range v.index[a] {
		for _, gb := range v.index[b] {
			if ga == gb {
				return true
			}
		}
	}
	return false
}

// HasSynonyms reports whether w belongs to any synonym group.
func (v *Vocabulary) HasSynonyms(w string) bool {
	if v.index == nil {
		v.buildIndex()
	}
	return len(v.index[w]) > 0
}
