package scraper

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// readValue returns the typed value of a control.
func readValue(n *html.Node, kind types.FieldType) types.FieldValue {
	switch kind {
	case types.FieldCheckbox:
		return types.BoolValue(dom.Checked(n))
	case types.FieldRadio:
		if dom.Checked(n) {
			return types.StringValue(dom.Value(n))
		}
		return types.AbsentValue()
	case types.FieldFile:
		return types.AbsentValue()
	case types.FieldNumber:
		raw := strings.TrimSpace(dom.Value(n))
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return types.NumberValue(f)
		}
		return types.StringValue(raw)
	case types.FieldSelect:
		opt, ok := dom.SelectedOption(n)
		if !ok {
			return types.StringValue("")
		}
		if opt.Text != "" {
			return types.StringValue(opt.Text)
		}
		return types.StringValue(opt.Value)
	case types.FieldContentEditable:
		return types.StringValue(strings.TrimSpace(dom.TextContent(n)))
	default:
		return types.StringValue(dom.Value(n))
	}
}
