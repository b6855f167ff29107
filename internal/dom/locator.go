package dom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// ErrNotFound is returned when a locator no longer matches any element.
var ErrNotFound = errors.New("Element not found")

// Locator is an XPath expression that re-finds a control.
type Locator string

// LocatorKind distinguishes the two locator shapes.
type LocatorKind int

const (
	LocatorInvalid LocatorKind = iota
	LocatorID
	LocatorPath
)

func (k LocatorKind) String() string {
	switch k {
	case LocatorID:
		return "id"
	case LocatorPath:
		return "path"
	default:
		return "invalid"
	}
}

const idLocatorPrefix = `//*[@id=`

// IDLocator builds an exact id lookup.
func IDLocator(id string) Locator {
	return Locator(idLocatorPrefix + xpathLiteral(id) + "]")
}

// PathLocator builds a positional path from the document root down to n.
// Each step is the tag name and the 1-based index among same-tag siblings.
func PathLocator(n *html.Node) Locator {
	var steps []string
	for c := n; c != nil && c.Type == html.ElementNode; c = c.Parent {
		idx := 1
		for s := c.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode && s.Data == c.Data {
				idx++
			}
		}
		steps = append(steps, Tag(c)+"["+strconv.Itoa(idx)+"]")
	}
	if len(steps) == 0 {
		return ""
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return Locator("/" + strings.Join(steps, "/"))
}

// LocatorFor prefers the element id and falls back to a positional path.
func LocatorFor(n *html.Node) Locator {
	if id := AttrOr(n, "id", ""); id != "" {
		return IDLocator(id)
	}
	return PathLocator(n)
}

// Kind classifies the locator.
func (l Locator) Kind() LocatorKind {
	switch {
	case strings.HasPrefix(string(l), idLocatorPrefix):
		return LocatorID
	case strings.HasPrefix(string(l), "/"):
		return LocatorPath
	default:
		return LocatorInvalid
	}
}

func (l Locator) String() string {
	return string(l)
}

// Validate checks that the locator compiles.
func (l Locator) Validate() error {
	if l.Kind() == LocatorInvalid {
		return fmt.Errorf("invalid locator %q", string(l))
	}
	_, err := compile(string(l))
	return err
}

// Resolve finds the element the locator points at in doc. Any failure,
// including a malformed expression, is reported as ErrNotFound.
func (l Locator) Resolve(doc *Document) (*html.Node, error) {
	if doc == nil || l == "" {
		return nil, ErrNotFound
	}
	expr, err := compile(string(l))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	n := htmlquery.QuerySelector(doc.Root(), expr)
	if n == nil || n.Type != html.ElementNode {
		return nil, ErrNotFound
	}
	return n, nil
}

var exprCache sync.Map

func compile(expr string) (*xpath.Expr, error) {
	if cached, ok := exprCache.Load(expr); ok {
		return cached.(*xpath.Expr), nil
	}
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, err
	}
	exprCache.Store(expr, compiled)
	return compiled, nil
}

// xpathLiteral quotes s as an XPath 1.0 string literal.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(quoted, `, '"', `) + ")"
}
