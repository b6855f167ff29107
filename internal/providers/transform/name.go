package transform

import "strings"

// Name is a personal name split into parts.
type Name struct {
	First  string `json:"first"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last"`
}

// SplitName splits on whitespace. Two tokens give first and last; more
// give first, middle (everything in between) and last; one token is all
// first name.
func SplitName(full string) Name {
	parts := strings.Fields(full)
	switch {
	case len(parts) == 2:
		return Name{First: parts[0], Last: parts[1]}
	case len(parts) >= 3:
		return Name{
			First:  parts[0],
			Middle: strings.Join(parts[1:len(parts)-1], " "),
			Last:   parts[len(parts)-1],
		}
	default:
		return Name{First: strings.TrimSpace(full)}
	}
}

// CombineName joins the non-empty parts with single spaces.
func CombineName(first, middle, last string) string {
	var parts []string
	for _, p := range []string{first, middle, last} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Full returns the combined name.
func (n Name) Full() string {
	return CombineName(n.First, n.Middle, n.Last)
}
