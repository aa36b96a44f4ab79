// Package model is a small declarative catalog of table/column overrides,
// adapted from the teacher's model.go (which defined Column/Definition/Col/
// AutoIncrement but never wired them to anything). relation.TableNameFor
// consults this package before falling back to its pluralized-snake-case
// convention. A Column's typed Func is available to callers that project
// entities by hand; repo.FindAllDTO does not use it.
package model

import (
	"reflect"
	"sync"
)

// Column pairs a projection name with a typed extractor function over a
// hydrated Model. It is also usable as a type-safe sort/select reference,
// the way the teacher's Col/AutoIncrement constructors originally intended.
type Column[Model any, ColType comparable] struct {
	Name string
	Func func(m *Model) ColType
}

// Extract adapts Func to an untyped signature, since a DTO's field set
// mixes columns of different ColType.
func (c *Column[Model, ColType]) Extract(m *Model) interface{} {
	return c.Func(m)
}

// Definition binds a Model type to an explicit table name and an arbitrary
// Schema value (typically a struct of *Column[Model, X] fields) describing
// its projectable columns.
type Definition[Model any, Schema any] struct {
	Table  string
	Schema Schema
}

var tableOverrides sync.Map // reflect.Type -> string

// Define registers definition.Table as relation.TableNameFor's override for
// Model, then returns definition for the caller to keep (e.g. to reach its
// Schema's Column extractors).
func Define[Model any, Schema any](definition Definition[Model, Schema]) *Definition[Model, Schema] {
	if definition.Table == "" {
		panic("model: table name is required")
	}
	var zero Model
	tableOverrides.Store(reflect.TypeOf(zero), definition.Table)
	return &definition
}

// TableNameOverride reports the table name registered for entity's type via
// Define, if any. relation.TableNameFor checks this before deriving a name
// from pluralized snake_case convention.
func TableNameOverride(entity interface{}) (string, bool) {
	t := reflect.TypeOf(entity)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	v, ok := tableOverrides.Load(t)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Col constructs a named column extractor.
func Col[Model any, ColType comparable](name string, funcPtr func(m *Model) ColType) *Column[Model, ColType] {
	return &Column[Model, ColType]{Name: name, Func: funcPtr}
}

// AutoIncrement constructs a column extractor for a surrogate key column.
// Kept distinct from Col (rather than merged) because a future revision is
// expected to mark these read-only in generated INSERT/UPDATE statements.
func AutoIncrement[Model any, ColType comparable](name string, funcPtr func(m *Model) ColType) *Column[Model, ColType] {
	return &Column[Model, ColType]{Name: name, Func: funcPtr}
}
