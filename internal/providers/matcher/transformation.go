package matcher

import "github.com/GriffinCanCode/formclip/internal/shared/types"

// TransformationFor picks the conversion between two control types. A date
// or phone conversion applies when exactly one side is that kind of
// control.
func TransformationFor(source, target types.FieldType) types.Transformation {
	switch {
	case source.IsDate() != target.IsDate():
		return types.TransformDate
	case source.IsTel() != target.IsTel():
		return types.TransformPhone
	}
	return types.TransformNone
}
