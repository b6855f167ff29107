package scraper

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// UnnamedField is the label of a control nothing describes.
const UnnamedField = types.UnnamedLabel

// maxNearbyText caps parent text used as a label so that a control inside
// a large container does not pick up the page copy around it.
const maxNearbyText = 50

var labelCleaner = strings.NewReplacer("*", "", ":", "")

// CleanText drops required-field asterisks and colons and collapses
// whitespace.
func CleanText(s string) string {
	return strings.Join(strings.Fields(labelCleaner.Replace(s)), " ")
}

// HumanizeName turns a programmatic name such as "firstName" or
// "first_name" into "First Name".
func HumanizeName(name string) string {
	words := splitIdent(name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// splitIdent splits on '_', '-', spaces and camelCase boundaries. An
// acronym stays whole: "userSSN" gives "user", "SSN".
func splitIdent(s string) []string {
	var words []string
	var cur []rune
	runes := []rune(s)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r) || r == '.':
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// labeler resolves labels against one document.
type labeler struct {
	q      *goquery.Document
	doc    *dom.Document
	labels *goquery.Selection
}

func newLabeler(doc *dom.Document) *labeler {
	q := doc.Query()
	return &labeler{q: q, doc: doc, labels: q.Find("label")}
}

// label returns the first non-empty label source for n.
func (l *labeler) label(n *html.Node) string {
	sources := []func(*html.Node) string{
		l.explicitLabel,
		l.enclosingLabel,
		func(n *html.Node) string { return CleanText(dom.AttrOr(n, "aria-label", "")) },
		l.labelledBy,
		func(n *html.Node) string { return CleanText(dom.AttrOr(n, "placeholder", "")) },
		func(n *html.Node) string { return HumanizeName(dom.AttrOr(n, "name", "")) },
		l.nearbyText,
	}
	for _, src := range sources {
		if text := src(n); text != "" {
			return text
		}
	}
	return UnnamedField
}

func (l *labeler) explicitLabel(n *html.Node) string {
	id := dom.AttrOr(n, "id", "")
	if id == "" {
		return ""
	}
	match := l.labels.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("for", "") == id
	}).First()
	if match.Length() == 0 {
		return ""
	}
	return CleanText(withoutControls(match.Get(0)))
}

func (l *labeler) enclosingLabel(n *html.Node) string {
	label := dom.Closest(n.Parent, "label")
	if label == nil {
		return ""
	}
	return CleanText(withoutControls(label))
}

func (l *labeler) labelledBy(n *html.Node) string {
	ids := strings.Fields(dom.AttrOr(n, "aria-labelledby", ""))
	var parts []string
	for _, id := range ids {
		if target := l.doc.ElementByID(id); target != nil {
			parts = append(parts, dom.TextContent(target))
		}
	}
	return CleanText(strings.Join(parts, " "))
}

func (l *labeler) nearbyText(n *html.Node) string {
	if prev := dom.PreviousElementSibling(n); prev != nil {
		switch dom.Tag(prev) {
		case "span", "div", "label":
			if text := CleanText(dom.TextContent(prev)); text != "" {
				return text
			}
		}
	}
	if parent := dom.ParentElement(n); parent != nil {
		text := CleanText(withoutControls(parent))
		if text != "" && utf8.RuneCountInString(text) < maxNearbyText {
			return text
		}
	}
	return ""
}

// withoutControls is the text of n minus the text inside nested controls,
// so a select's option list does not leak into its label.
func withoutControls(n *html.Node) string {
	return dom.TextContentExcluding(n, func(c *html.Node) bool {
		switch dom.Tag(c) {
		case "input", "select", "textarea", "script", "style":
			return true
		}
		return false
	})
}
