package types

// Transformation names the conversion applied to a value on its way from
// source to target.
type Transformation string

const (
	TransformNone    Transformation = "none"
	TransformDate    Transformation = "date"
	TransformPhone   Transformation = "phone"
	TransformSplit   Transformation = "split"
	TransformCombine Transformation = "combine"
	TransformAddress Transformation = "address"
)

// Valid reports whether t is a known transformation.
func (t Transformation) Valid() bool {
	switch t {
	case TransformNone, TransformDate, TransformPhone, TransformSplit, TransformCombine, TransformAddress:
		return true
	}
	return false
}

// FieldMapping pairs a source value with the target field it should fill.
// Mappings are computed per fill and never stored.
type FieldMapping struct {
	SourceFieldKey string         `json:"sourceFieldKey"`
	SourceValue    FieldValue     `json:"sourceValue"`
	TargetField    Field          `json:"targetField"`
	Transformation Transformation `json:"transformation"`
	Confidence     float64        `json:"confidence"`
}
