package types

// EntityType classifies an entity.
type EntityType string

const (
	EntityCustomer  EntityType = "customer"
	EntityHousehold EntityType = "household"
	EntityVehicle   EntityType = "vehicle"
	EntityProperty  EntityType = "property"
	EntityCustom    EntityType = "custom"
)

// Entity is a named group of fields. An entity owns its fields; a field is
// never shared between entities.
type Entity struct {
	ID          string     `json:"id" validate:"required"`
	Type        EntityType `json:"type" validate:"oneof=customer household vehicle property custom"`
	Index       int        `json:"index"`
	Name        string     `json:"name"`
	Fields      []Field    `json:"fields" validate:"dive"`
	ToggleState bool       `json:"toggleState"`
}

// ActiveFields returns the fields that should take part in a fill. A
// disabled entity contributes nothing.
func (e Entity) ActiveFields() []Field {
	if !e.ToggleState {
		return nil
	}
	out := make([]Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.ToggleState {
			out = append(out, f)
		}
	}
	return out
}
