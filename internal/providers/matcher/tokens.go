package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokenize folds accents, splits camelCase words, lowercases, turns
// punctuation into spaces and splits on whitespace. The result is a multiset: repeated
// words are kept.
func Tokenize(texts ...string) []string {
	var tokens []string
	for _, t := range texts {
		tokens = append(tokens, strings.Fields(normalize(t))...)
	}
	return tokens
}

func normalize(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = s
	}
	rs := []rune(folded)
	var b strings.Builder
	b.Grow(len(folded))
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			b.WriteByte(' ')
			continue
		}
		if camelBoundary(rs, i) {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// camelBoundary reports whether a new word starts at rs[i]. An acronym
// stays whole: "userSSN" splits once, "SSNNumber" before "Number".
func camelBoundary(rs []rune, i int) bool {
	if i == 0 || !unicode.IsUpper(rs[i]) {
		return false
	}
	prev := rs[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	return unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1])
}
