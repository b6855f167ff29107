package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// FieldType is the control kind of a field. Input elements use their type
// attribute; other controls use the tag-derived names below.
type FieldType string

const (
	FieldText            FieldType = "text"
	FieldEmail           FieldType = "email"
	FieldTel             FieldType = "tel"
	FieldDate            FieldType = "date"
	FieldNumber          FieldType = "number"
	FieldPassword        FieldType = "password"
	FieldCheckbox        FieldType = "checkbox"
	FieldRadio           FieldType = "radio"
	FieldFile            FieldType = "file"
	FieldSelect          FieldType = "select"
	FieldTextarea        FieldType = "textarea"
	FieldContentEditable FieldType = "contenteditable"
)

// IsDate reports whether the control takes a calendar date.
func (t FieldType) IsDate() bool {
	return t == FieldDate
}

// IsTel reports whether the control takes a telephone number.
func (t FieldType) IsTel() bool {
	return t == FieldTel
}

// ValueKind tags which member of FieldValue is meaningful.
type ValueKind string

const (
	ValueAbsent ValueKind = "absent"
	ValueString ValueKind = "string"
	ValueBool   ValueKind = "bool"
	ValueNumber ValueKind = "number"
)

// FieldValue is a control's value. Checkboxes carry booleans, number
// inputs carry numbers, unchecked radios and file inputs carry nothing.
// It encodes to the natural JSON value: null, string, bool or number.
type FieldValue struct {
	Kind ValueKind
	Str  string
	Bool bool
	Num  float64
}

func StringValue(s string) FieldValue  { return FieldValue{Kind: ValueString, Str: s} }
func BoolValue(b bool) FieldValue      { return FieldValue{Kind: ValueBool, Bool: b} }
func NumberValue(n float64) FieldValue { return FieldValue{Kind: ValueNumber, Num: n} }
func AbsentValue() FieldValue          { return FieldValue{Kind: ValueAbsent} }

// IsEmpty reports whether the value is absent or a blank string.
func (v FieldValue) IsEmpty() bool {
	switch v.Kind {
	case ValueString:
		return strings.TrimSpace(v.Str) == ""
	case ValueBool, ValueNumber:
		return false
	default:
		return true
	}
}

// Text renders the value the way it would be typed into a text control.
func (v FieldValue) Text() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

func (v FieldValue) String() string {
	return v.Text()
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return sonic.Marshal(v.Str)
	case ValueBool:
		return sonic.Marshal(v.Bool)
	case ValueNumber:
		return sonic.Marshal(v.Num)
	default:
		return []byte("null"), nil
	}
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch x := raw.(type) {
	case nil:
		*v = AbsentValue()
	case string:
		*v = StringValue(x)
	case bool:
		*v = BoolValue(x)
	case float64:
		*v = NumberValue(x)
	default:
		return fmt.Errorf("unsupported field value %s", string(data))
	}
	return nil
}

// UnnamedLabel is the label of a control nothing on the page describes.
const UnnamedLabel = "Unnamed Field"

// Field is one form control as seen by the scanner.
type Field struct {
	ID          string     `json:"id" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Label       string     `json:"label"`
	Type        FieldType  `json:"type" validate:"required"`
	Value       FieldValue `json:"value"`
	Locator     string     `json:"locator" validate:"required"`
	Required    bool       `json:"required"`
	Validation  string     `json:"validation,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	ToggleState bool       `json:"toggleState"`
	Editable    bool       `json:"editable"`
}

// Key returns the text used to refer to the field in mappings and reports.
func (f Field) Key() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}
