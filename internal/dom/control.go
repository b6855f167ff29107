package dom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// Input types that are never treated as data-carrying controls.
var excludedInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
}

// IsContentEditable reports whether n is an editable region.
func IsContentEditable(n *html.Node) bool {
	v, ok := Attr(n, "contenteditable")
	if !ok {
		return false
	}
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" || v == "true" || v == "plaintext-only"
}

// InputType returns the normalized type attribute of an input element.
func InputType(n *html.Node) string {
	t := strings.ToLower(strings.TrimSpace(AttrOr(n, "type", "text")))
	if t == "" {
		return "text"
	}
	return t
}

// IsControl reports whether n is a form control that can carry data.
func IsControl(n *html.Node) bool {
	switch Tag(n) {
	case "input":
		return !excludedInputTypes[InputType(n)]
	case "select", "textarea":
		return true
	case "":
		return false
	default:
		return IsContentEditable(n)
	}
}

// KindOf returns the field type of a control.
func KindOf(n *html.Node) types.FieldType {
	switch Tag(n) {
	case "input":
		return types.FieldType(InputType(n))
	case "select":
		return types.FieldSelect
	case "textarea":
		return types.FieldTextarea
	}
	if IsContentEditable(n) {
		return types.FieldContentEditable
	}
	return types.FieldText
}

// IsReadOnly reports whether the user could not type into n.
func IsReadOnly(n *html.Node) bool {
	return HasAttr(n, "readonly")
}

// IsDisabled reports whether n is disabled directly or via a disabled
// fieldset.
func IsDisabled(n *html.Node) bool {
	if HasAttr(n, "disabled") {
		return true
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if Tag(p) == "fieldset" && HasAttr(p, "disabled") {
			return true
		}
	}
	return false
}

// Value returns the current string value of a control.
func Value(n *html.Node) string {
	switch Tag(n) {
	case "input":
		if t := InputType(n); t == "checkbox" || t == "radio" {
			return AttrOr(n, "value", "on")
		}
		return AttrOr(n, "value", "")
	case "textarea":
		return TextContent(n)
	case "select":
		if opt, ok := SelectedOption(n); ok {
			return opt.Value
		}
		return ""
	case "option":
		return AttrOr(n, "value", strings.TrimSpace(TextContent(n)))
	}
	return strings.TrimSpace(TextContent(n))
}

// SetValue assigns a string value. Inputs keep it in the value attribute,
// textareas and editable regions in their text.
func SetValue(n *html.Node, v string) {
	switch Tag(n) {
	case "input", "option":
		SetAttr(n, "value", v)
	case "select":
		for i, opt := range Options(n) {
			if opt.Value == v {
				SelectIndex(n, i)
				return
			}
		}
	default:
		SetTextContent(n, v)
	}
}

// Checked reports the checked state of a checkbox or radio.
func Checked(n *html.Node) bool {
	return HasAttr(n, "checked")
}

// SetChecked sets the checked state. Checking a radio clears the other
// radios of the same group.
func SetChecked(n *html.Node, on bool) {
	if !on {
		RemoveAttr(n, "checked")
		return
	}
	SetAttr(n, "checked", "")
	if InputType(n) != "radio" {
		return
	}
	name := AttrOr(n, "name", "")
	if name == "" {
		return
	}
	scope := Closest(n, "form")
	if scope == nil {
		scope = rootOf(n)
	}
	for _, other := range Descendants(scope, func(c *html.Node) bool {
		return Tag(c) == "input" && InputType(c) == "radio" && AttrOr(c, "name", "") == name
	}) {
		if other != n {
			RemoveAttr(other, "checked")
		}
	}
}

// Option is one entry of a select control.
type Option struct {
	Node     *html.Node
	Value    string
	Text     string
	Selected bool
}

// Options lists the options of a select, including those inside optgroups.
func Options(sel *html.Node) []Option {
	nodes := Descendants(sel, func(c *html.Node) bool { return Tag(c) == "option" })
	out := make([]Option, 0, len(nodes))
	for _, o := range nodes {
		text := strings.Join(strings.Fields(TextContent(o)), " ")
		out = append(out, Option{
			Node:     o,
			Value:    AttrOr(o, "value", text),
			Text:     text,
			Selected: HasAttr(o, "selected"),
		})
	}
	return out
}

// SelectedIndex returns the index of the selected option. A single select
// with nothing marked selected shows its first option.
func SelectedIndex(sel *html.Node) int {
	opts := Options(sel)
	for i, o := range opts {
		if o.Selected {
			return i
		}
	}
	if len(opts) > 0 && !HasAttr(sel, "multiple") {
		return 0
	}
	return -1
}

// SelectedOption returns the selected option, if any.
func SelectedOption(sel *html.Node) (Option, bool) {
	i := SelectedIndex(sel)
	if i < 0 {
		return Option{}, false
	}
	return Options(sel)[i], true
}

// SelectIndex marks option i selected and clears the others.
func SelectIndex(sel *html.Node, i int) {
	for j, o := range Options(sel) {
		if j == i {
			SetAttr(o.Node, "selected", "")
		} else {
			RemoveAttr(o.Node, "selected")
		}
	}
}

// ClearValue empties a control the way a user would: text cleared,
// boxes unchecked, selects back to their first option.
func ClearValue(n *html.Node) {
	switch KindOf(n) {
	case types.FieldCheckbox, types.FieldRadio:
		RemoveAttr(n, "checked")
	case types.FieldSelect:
		SelectIndex(n, -1)
	case types.FieldFile:
	default:
		SetValue(n, "")
	}
}

func rootOf(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}
