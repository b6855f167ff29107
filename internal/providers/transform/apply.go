package transform

import (
	"strings"

	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// Options carries caller preferences for output formats.
type Options struct {
	DateLayout DateLayout
}

// DefaultOptions renders dates the way US forms expect them.
func DefaultOptions() Options {
	return Options{DateLayout: LayoutUS}
}

// Apply converts v for target according to kind. Non-string values pass
// through untouched.
func Apply(kind types.Transformation, v types.FieldValue, target types.Field, opts Options) types.FieldValue {
	if v.Kind != types.ValueString {
		return v
	}
	if opts.DateLayout == "" {
		opts.DateLayout = LayoutUS
	}

	s := v.Str
	switch kind {
	case types.TransformDate:
		return types.StringValue(Date(s, opts.DateLayout))
	case types.TransformPhone:
		return types.StringValue(Phone(s))
	case types.TransformSplit:
		return types.StringValue(namePart(SplitName(s), target))
	case types.TransformCombine:
		return types.StringValue(strings.Join(strings.Fields(s), " "))
	case types.TransformAddress:
		return types.StringValue(addressPart(ParseAddress(s), target))
	default:
		return v
	}
}

func targetText(f types.Field) string {
	return strings.ToLower(f.Label + " " + f.Name)
}

func namePart(n Name, target types.Field) string {
	t := targetText(target)
	switch {
	case containsAny(t, "last", "surname", "family", "lname"):
		return n.Last
	case containsAny(t, "middle", "mname"):
		return n.Middle
	default:
		return n.First
	}
}

func addressPart(a Address, target types.Field) string {
	t := targetText(target)
	switch {
	case containsAny(t, "zip", "postal"):
		return a.Zip
	case containsAny(t, "city", "town"):
		return a.City
	case containsAny(t, "state", "province", "region"):
		return a.State
	default:
		return a.Street
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
