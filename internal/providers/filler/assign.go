package filler

import (
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/providers/transform"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// ErrUnsupported is returned for controls that cannot be filled.
var ErrUnsupported = errors.New("Cannot auto-fill file inputs")

// assign writes v into n and returns the text that ended up in the control.
func assign(n *html.Node, v types.FieldValue) (string, error) {
	switch dom.KindOf(n) {
	case types.FieldFile:
		return "", ErrUnsupported
	case types.FieldCheckbox:
		on := truthy(v)
		dom.SetChecked(n, on)
		return types.BoolValue(on).Text(), nil
	case types.FieldRadio:
		if strings.EqualFold(dom.Value(n), v.Text()) {
			dom.SetChecked(n, true)
		}
		return v.Text(), nil
	case types.FieldSelect:
		if i := matchOption(dom.Options(n), v.Text()); i >= 0 {
			dom.SelectIndex(n, i)
		}
		if opt, ok := dom.SelectedOption(n); ok {
			return opt.Text, nil
		}
		return "", nil
	default:
		dom.SetValue(n, v.Text())
		return v.Text(), nil
	}
}

func truthy(v types.FieldValue) bool {
	switch v.Kind {
	case types.ValueBool:
		return v.Bool
	case types.ValueNumber:
		return v.Num != 0
	case types.ValueString:
		return transform.Bool(v.Str)
	}
	return false
}

// matchOption finds the option for want in three passes: exact value or
// text, then the same ignoring case, then option text containing want or
// contained in it. The first pass that finds anything decides; -1 means
// no pass did.
func matchOption(opts []dom.Option, want string) int {
	for i, o := range opts {
		if o.Value == want || o.Text == want {
			return i
		}
	}

	lower := strings.ToLower(want)
	for i, o := range opts {
		if strings.ToLower(o.Value) == lower || strings.ToLower(o.Text) == lower {
			return i
		}
	}

	if lower == "" {
		return -1
	}
	for i, o := range opts {
		text := strings.ToLower(o.Text)
		if text == "" {
			continue
		}
		if strings.Contains(text, lower) || strings.Contains(lower, text) {
			return i
		}
	}
	return -1
}
