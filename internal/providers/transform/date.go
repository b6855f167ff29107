package transform

import (
	"strings"
	"time"
)

// DateLayout names an output date format.
type DateLayout string

const (
	LayoutUS  DateLayout = "MM/DD/YYYY"
	LayoutISO DateLayout = "YYYY-MM-DD"
	LayoutEU  DateLayout = "DD/MM/YYYY"
)

var goLayouts = map[DateLayout]string{
	LayoutUS:  "01/02/2006",
	LayoutISO: "2006-01-02",
	LayoutEU:  "02/01/2006",
}

// Valid reports whether l is a supported layout.
func (l DateLayout) Valid() bool {
	_, ok := goLayouts[l]
	return ok
}

// Accepted input layouts, tried in order. Slash dates are read month
// first, as browsers do.
var inputLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"2006/1/2",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Mon Jan 2 2006",
	"Mon, 02 Jan 2006",
	"20060102",
}

// ParseDate reads a calendar date in any accepted layout.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date re-renders value in layout. Unparseable input and unknown layouts
// return value unchanged.
func Date(value string, layout DateLayout) string {
	goLayout, ok := goLayouts[layout]
	if !ok {
		return value
	}
	t, ok := ParseDate(value)
	if !ok {
		return value
	}
	return t.Format(goLayout)
}
