// Package dom is the document model the scanner and the fill executor work
// against.
//
// A Document wraps a parsed x/net/html tree. Form controls are read and
// written through the helpers in control.go, which mirror the properties a
// browser exposes (value, checked, selectedIndex) on top of plain
// attributes and text nodes, so that rendering the tree back to HTML shows
// the filled state.
//
// Locators re-find a control in a later or mutated document:
//
//	//*[@id="email"]                     exact id lookup
//	/html[1]/body[1]/form[1]/input[3]    positional path
//
// Both forms are XPath and resolve through htmlquery.
//
// After a control is assigned, a Notifier delivers the input, change and
// blur events in that order, pausing for the settle delay after each one.
package dom
