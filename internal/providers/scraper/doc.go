// Package scraper turns an HTML document into clipboard fields.
//
// The Scanner walks the document's form controls in order and produces one
// types.Field per control:
//   - label: explicit label, enclosing label, aria-label, aria-labelledby,
//     placeholder, humanized name, nearby text, in that order
//   - value: typed per control kind (checkbox bool, number, select text)
//   - locator: id lookup when the element has an id, positional path otherwise
//
// The Grouper partitions scanned fields into entities using keyword lists
// from the vocab package. The Provider exposes both as tools.
package scraper
