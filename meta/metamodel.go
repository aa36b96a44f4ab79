package meta

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/fatih/structs"
)

// ErrNoSuchAttribute is returned by Attribute when the requested name does
// not exist on the entity's registered struct.
type ErrNoSuchAttribute struct {
	Type string
	Name string
}

func (e *ErrNoSuchAttribute) Error() string {
	return fmt.Sprintf("meta: no such attribute %q on %s", e.Name, e.Type)
}

// Attribute describes one field of a registered entity struct.
type Attribute struct {
	Name    string
	Kind    Kind
	GoType  reflect.Type // the field's own Go type (slice type for collections)
	Target  reflect.Type // for relationship kinds: the related entity struct type
	Column   string // db column name, defaults to snake-cased field name
	IsArray  bool
	JSONText bool // column stores a JSON-serialized value as text (spec §4.5)

	// Junction is the join-table name for a ManyToMany attribute, set via
	// `rel:"m2m,through=post_tag"`. Empty for every other Kind.
	Junction string
}

// IsCollection reports whether this attribute holds more than one value.
func (a *Attribute) IsCollection() bool {
	return a.Kind.IsToMany()
}

type entityModel struct {
	typ        reflect.Type
	attrs      map[string]*Attribute
	order      []string // declared field order, used for composite PK ordering
	primaryKey []string
}

// registry is the process-wide cache described in spec §4.1: keyed by
// reflect.Type, populated lazily on first use, and never mutated in place
// once an entityModel is published — only replaced wholesale under the
// lock, which is the double-checked-publication pattern called for in §5.
type registry struct {
	mu     sync.RWMutex
	models map[reflect.Type]*entityModel

	pathMu sync.RWMutex
	paths  map[string]bool // not read or written after initialization; IsToManyPath/IsValidPath walk the cached models on every call
}

var shared = &registry{
	models: make(map[reflect.Type]*entityModel),
	paths:  make(map[string]bool),
}

func entityType(entity interface{}) reflect.Type {
	t := reflect.TypeOf(entity)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// Register builds (or returns the cached) entityModel for a struct value.
// Relationship attributes are discovered from the `rel:"o2o|o2m|m2o|m2m"`
// struct tag; everything else is SingleBasic unless it is itself a struct
// or slice-of-struct, in which case it defaults to ManyToOne/OneToMany so
// that relational fields need not be annotated twice.
func register(entity interface{}) *entityModel {
	t := entityType(entity)

	shared.mu.RLock()
	if m, ok := shared.models[t]; ok {
		shared.mu.RUnlock()
		return m
	}
	shared.mu.RUnlock()

	shared.mu.Lock()
	defer shared.mu.Unlock()
	if m, ok := shared.models[t]; ok {
		return m
	}

	m := buildModel(t)
	shared.models[t] = m
	return m
}

func buildModel(t reflect.Type) *entityModel {
	v := reflect.New(t).Elem().Interface()
	fields := structs.New(v).Fields()

	m := &entityModel{
		typ:   t,
		attrs: make(map[string]*Attribute, len(fields)),
	}

	for _, f := range fields {
		if !f.IsExported() {
			continue
		}

		attr := attributeFromField(f)
		m.attrs[f.Name()] = attr
		m.order = append(m.order, f.Name())

		if tag := f.Tag("db"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" && parts[0] != "-" {
				attr.Column = parts[0]
			}
			for _, p := range parts[1:] {
				switch p {
				case "pk":
					m.primaryKey = append(m.primaryKey, f.Name())
				case "json":
					attr.JSONText = true
				}
			}
		}
	}

	if len(m.primaryKey) == 0 {
		if _, ok := m.attrs["ID"]; ok {
			m.primaryKey = []string{"ID"}
		}
	}

	return m
}

func attributeFromField(f *structs.Field) *Attribute {
	ft := f.Value()
	rt := reflect.TypeOf(ft)

	attr := &Attribute{
		Name:   f.Name(),
		Kind:   SingleBasic,
		GoType: rt,
		Column: toSnakeCase(f.Name()),
	}

	relTag := f.Tag("rel")
	relParts := strings.Split(relTag, ",")
	if k, ok := kindFromRelTag(relParts[0]); ok {
		attr.Kind = k
	}
	for _, p := range relParts[1:] {
		if through, ok := strings.CutPrefix(p, "through="); ok {
			attr.Junction = through
		}
	}

	elemType := rt
	isSlice := rt != nil && (rt.Kind() == reflect.Slice || rt.Kind() == reflect.Array)
	if isSlice {
		elemType = rt.Elem()
		attr.IsArray = true
	}
	for elemType != nil && elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}

	if relTag == "" {
		switch {
		case isSlice && elemType != nil && elemType.Kind() == reflect.Struct:
			attr.Kind = OneToMany
		case isSlice:
			attr.Kind = ElementCollection
		case elemType != nil && elemType.Kind() == reflect.Struct && elemType != reflect.TypeOf(struct{}{}):
			if isKnownScalarStruct(elemType) {
				attr.Kind = SingleBasic
			} else {
				attr.Kind = ManyToOne
			}
		}
	}

	if attr.Kind.IsToOne() || attr.Kind.IsToMany() && elemType != nil && elemType.Kind() == reflect.Struct {
		attr.Target = elemType
	}

	return attr
}

// isKnownScalarStruct excludes types like time.Time from being treated as
// relationship targets even though they are structs.
func isKnownScalarStruct(t reflect.Type) bool {
	return t.PkgPath() == "time" && t.Name() == "Time"
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// Attribute resolves a single attribute by name on the entity's model.
// Fails with ErrNoSuchAttribute if absent, per spec §4.1.
func Attribute(entity interface{}, name string) (*Attribute, error) {
	m := register(entity)
	if a, ok := m.attrs[name]; ok {
		return a, nil
	}
	return nil, &ErrNoSuchAttribute{Type: entityType(entity).Name(), Name: name}
}

// PrimaryKey returns the primary-key attribute name(s) of an entity, in
// declared order. Supports composite keys via a `db:"...,pk"` tag on more
// than one field (the IdClass/EmbeddedId analogue).
func PrimaryKey(entity interface{}) []string {
	m := register(entity)
	pk := make([]string, len(m.primaryKey))
	copy(pk, m.primaryKey)
	return pk
}

// DeclaredFields returns attribute names in struct declaration order,
// used when composite primary keys need a stable tiebreaker ordering.
func DeclaredFields(entity interface{}) []string {
	m := register(entity)
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// IsValidPath walks a dotted path from root and validates every segment
// exists on its respective entity model, without evaluating relationship
// semantics.
func IsValidPath(root interface{}, path string) bool {
	segs := strings.Split(path, ".")
	cur := root
	for i, seg := range segs {
		m := register(cur)
		attr, ok := m.attrs[seg]
		if !ok {
			return false
		}
		if i < len(segs)-1 {
			if attr.Target == nil {
				return false
			}
			cur = reflect.New(attr.Target).Elem().Interface()
		}
	}
	return true
}

// IsToManyPath walks path from root and returns true if any segment is
// collection-valued.
func IsToManyPath(root interface{}, path string) bool {
	segs := strings.Split(path, ".")
	cur := root
	for _, seg := range segs {
		m := register(cur)
		attr, ok := m.attrs[seg]
		if !ok {
			return false
		}
		if attr.IsCollection() {
			return true
		}
		if attr.Target != nil {
			cur = reflect.New(attr.Target).Elem().Interface()
		}
	}
	return false
}

// Attributes returns the full attribute table for an entity, keyed by
// field name. Callers must treat the returned map as read-only.
func Attributes(entity interface{}) map[string]*Attribute {
	m := register(entity)
	return m.attrs
}

// TypeName returns the registered struct's bare type name, used for
// building default table/alias names.
func TypeName(entity interface{}) string {
	return entityType(entity).Name()
}
