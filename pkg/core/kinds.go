package core

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// TypeTag names the declared type of a field. It drives the cast rule when a
// field is assigned from raw text.
type TypeTag string

const (
	TypeString     TypeTag = "string"
	TypeInt        TypeTag = "int"
	TypeFloat      TypeTag = "float"
	TypeBool       TypeTag = "bool"
	TypeStringList TypeTag = "[]string"
	TypeTime       TypeTag = "datetime"
)

// Kind names.
const (
	KindBaseModel = "BaseModel"
	KindUser      = "User"
	KindState     = "State"
	KindCity      = "City"
	KindAmenity   = "Amenity"
	KindPlace     = "Place"
	KindReview    = "Review"
)

// Field is a declared attribute of a kind.
type Field struct {
	Name string
	Type TypeTag
}

// Default returns the zero value materialized for the field on a new instance.
func (f Field) Default() any {
	switch f.Type {
	case TypeInt:
		return 0
	case TypeFloat:
		return 0.0
	case TypeBool:
		return false
	case TypeStringList:
		return []string{}
	default:
		return ""
	}
}

// Class pairs a kind's schema with its constructor and rehydrator.
type Class struct {
	Name   string
	Fields []Field

	// New builds a fresh instance with a new id and both timestamps set to now.
	New func(now time.Time) *Entity

	// Rehydrate rebuilds an instance from a serialized mapping. It never
	// registers the result anywhere.
	Rehydrate func(attrs map[string]any, now time.Time) (*Entity, error)
}

// Field looks up a declared field by name.
func (c Class) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// baseFields are shared by every kind and can never be assigned from outside.
var baseFields = []Field{
	{Name: "id", Type: TypeString},
	{Name: "created_at", Type: TypeTime},
	{Name: "updated_at", Type: TypeTime},
}

var schema = map[string][]Field{
	KindBaseModel: nil,
	KindUser: {
		{Name: "email", Type: TypeString},
		{Name: "password", Type: TypeString},
		{Name: "first_name", Type: TypeString},
		{Name: "last_name", Type: TypeString},
	},
	KindState: {
		{Name: "name", Type: TypeString},
	},
	KindCity: {
		{Name: "state_id", Type: TypeString},
		{Name: "name", Type: TypeString},
	},
	KindAmenity: {
		{Name: "name", Type: TypeString},
	},
	KindPlace: {
		{Name: "city_id", Type: TypeString},
		{Name: "user_id", Type: TypeString},
		{Name: "name", Type: TypeString},
		{Name: "description", Type: TypeString},
		{Name: "number_rooms", Type: TypeInt},
		{Name: "number_bathrooms", Type: TypeInt},
		{Name: "max_guest", Type: TypeInt},
		{Name: "price_by_night", Type: TypeInt},
		{Name: "latitude", Type: TypeFloat},
		{Name: "longitude", Type: TypeFloat},
		{Name: "amenity_ids", Type: TypeStringList},
	},
	KindReview: {
		{Name: "place_id", Type: TypeString},
		{Name: "user_id", Type: TypeString},
		{Name: "text", Type: TypeString},
	},
}

// registry is built once and never mutated afterwards.
var registry = buildRegistry()

func buildRegistry() map[string]Class {
	classes := make(map[string]Class, len(schema))
	for name, fields := range schema {
		classes[name] = newClass(name, fields)
	}
	return classes
}

func newClass(name string, fields []Field) Class {
	c := Class{Name: name, Fields: fields}
	c.New = func(now time.Time) *Entity {
		return blank(c, uuid.New().String(), now)
	}
	c.Rehydrate = func(attrs map[string]any, now time.Time) (*Entity, error) {
		return rehydrate(c, attrs, now)
	}
	return c
}

// Classes returns the closed registry of known kinds keyed by name.
func Classes() map[string]Class {
	return maps.Clone(registry)
}

// KindNames returns the registered kind names in lexical order.
func KindNames() []string {
	return slices.Sorted(maps.Keys(registry))
}

// LookupClass resolves a kind name against the registry.
func LookupClass(kind string) (Class, bool) {
	c, ok := registry[kind]
	return c, ok
}

// Attributes returns kind -> field -> type tag. BaseModel lists the shared
// id/created_at/updated_at fields; the derived kinds list their own.
func Attributes() map[string]map[string]TypeTag {
	out := make(map[string]map[string]TypeTag, len(schema))
	for name, fields := range schema {
		if name == KindBaseModel {
			fields = baseFields
		}
		tags := make(map[string]TypeTag, len(fields))
		for _, f := range fields {
			tags[f.Name] = f.Type
		}
		out[name] = tags
	}
	return out
}

// IsReadOnly reports whether name is one of the identity/timestamp fields.
func IsReadOnly(name string) bool {
	for _, f := range baseFields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Rehydrate rebuilds an instance of kind from a serialized mapping.
func Rehydrate(kind string, attrs map[string]any) (*Entity, error) {
	c, ok := LookupClass(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return c.Rehydrate(attrs, Now())
}
