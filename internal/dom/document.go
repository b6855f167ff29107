package dom

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// MaxDocumentSize caps the HTML accepted by Load.
const MaxDocumentSize = 10 * 1024 * 1024

var (
	ErrEmptyDocument = errors.New("document is empty")
	ErrTooLarge      = errors.New("document exceeds maximum size")
)

// Document is a parsed HTML page.
type Document struct {
	root *html.Node
	url  string
}

// Load reads an HTML document, converting it to UTF-8 first. The declared
// content type wins; without one the encoding is sniffed with chardet.
func Load(r io.Reader, contentType string) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return nil, ErrTooLarge
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	if contentType == "" {
		contentType = DetectContentType(data)
	}

	utf8, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}

	root, err := html.Parse(bufio.NewReader(utf8))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// Parse parses an HTML string that is already UTF-8.
func Parse(s string) (*Document, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptyDocument
	}
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// MustParse is Parse for fixtures; it panics on error.
func MustParse(s string) *Document {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DetectContentType guesses a content type with charset from raw bytes.
func DetectContentType(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return "text/html; charset=utf-8"
	}
	return "text/html; charset=" + strings.ToLower(result.Charset)
}

// WithURL records where the document came from.
func (d *Document) WithURL(url string) *Document {
	d.url = url
	return d
}

// URL returns the document's source URL, if known.
func (d *Document) URL() string {
	return d.url
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Query returns a goquery view of the live tree. Mutations made through the
// selection are mutations of the document.
func (d *Document) Query() *goquery.Document {
	return goquery.NewDocumentFromNode(d.root)
}

// ElementByID returns the first element whose id attribute equals id.
func (d *Document) ElementByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && AttrOr(n, "id", "") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// HTML returns the document as an HTML string.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{root: cloneTree(d.root), url: d.url}
}

func cloneTree(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneTree(child))
	}
	return c
}

// walk visits n and its descendants in document order until fn returns
// false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
