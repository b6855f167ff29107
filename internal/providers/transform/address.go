package transform

import (
	"regexp"
	"strings"
)

var (
	statePattern = regexp.MustCompile(`\b[A-Z]{2}\b`)
	zipPattern   = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
)

// Address is a free-text address split into parts.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// ParseAddress takes street from before the first comma and city from
// between the first and second. State and zip are independent scans of the
// whole string, so a stray two-letter capital token anywhere can be taken
// for the state.
func ParseAddress(full string) Address {
	parts := strings.Split(full, ",")
	var a Address
	a.Street = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		a.City = strings.TrimSpace(parts[1])
	}
	a.State = statePattern.FindString(full)
	a.Zip = zipPattern.FindString(full)
	return a
}
