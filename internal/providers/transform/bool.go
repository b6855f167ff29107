package transform

import "strings"

var truthy = map[string]bool{
	"yes":  true,
	"y":    true,
	"true": true,
	"1":    true,
	"on":   true,
}

// Bool normalizes a textual flag.
func Bool(value string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(value))]
}
