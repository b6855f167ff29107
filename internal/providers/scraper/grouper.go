package scraper

import (
	"strings"

	"github.com/GriffinCanCode/formclip/internal/shared/id"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
	"github.com/GriffinCanCode/formclip/internal/vocab"
)

// Category is the coarse class a field is sorted into before grouping.
type Category int

const (
	CategoryPerson Category = iota
	CategoryVehicle
	CategoryAddress
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryPerson:
		return "person"
	case CategoryVehicle:
		return "vehicle"
	case CategoryAddress:
		return "address"
	default:
		return "other"
	}
}

// Entity names.
const (
	CustomerEntityName = "Customer Information"
	VehicleEntityName  = "Vehicle Information"
	GeneralEntityName  = "Form Data"
)

// Grouper partitions fields into entities by keyword.
type Grouper struct {
	vocab *vocab.Vocabulary
}

// NewGrouper creates a grouper. A nil vocabulary means vocab.Default().
func NewGrouper(v *vocab.Vocabulary) *Grouper {
	if v == nil {
		v = vocab.Default()
	}
	return &Grouper{vocab: v}
}

// Classify checks the field's label and name against the keyword lists in
// priority order person, vehicle, address.
func (g *Grouper) Classify(f types.Field) Category {
	label := strings.ToLower(f.Label)
	name := strings.ToLower(f.Name)
	switch {
	case matchesAny(label, name, g.vocab.Person):
		return CategoryPerson
	case matchesAny(label, name, g.vocab.Vehicle):
		return CategoryVehicle
	case matchesAny(label, name, g.vocab.Address):
		return CategoryAddress
	}
	return CategoryOther
}

// Group returns at most a customer and a vehicle entity, plus a general
// entity for address and other fields when there is no customer to hold
// them. Field order within each entity follows scan order.
func (g *Grouper) Group(fields []types.Field) []types.Entity {
	buckets := make(map[Category][]types.Field, 4)
	for _, f := range fields {
		c := g.Classify(f)
		buckets[c] = append(buckets[c], f)
	}

	rest := append(buckets[CategoryAddress], buckets[CategoryOther]...)
	var entities []types.Entity

	if person := buckets[CategoryPerson]; len(person) > 0 {
		entities = append(entities, newEntity(types.EntityCustomer, CustomerEntityName, append(person, rest...)))
		rest = nil
	}
	if vehicle := buckets[CategoryVehicle]; len(vehicle) > 0 {
		entities = append(entities, newEntity(types.EntityVehicle, VehicleEntityName, vehicle))
	}
	if len(rest) > 0 {
		entities = append(entities, newEntity(types.EntityCustom, GeneralEntityName, rest))
	}
	return entities
}

func newEntity(t types.EntityType, name string, fields []types.Field) types.Entity {
	return types.Entity{
		ID:          id.NewEntityID().String(),
		Type:        t,
		Index:       0,
		Name:        name,
		Fields:      fields,
		ToggleState: true,
	}
}

func matchesAny(label, name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(label, kw) || strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
