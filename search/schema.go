package search

import (
	"reflect"
	"strings"

	"github.com/fatih/structs"

	"github.com/lemmego/searchable/meta"
)

// FieldSpec is what the `search:"..."` struct tag on a DTO field extracts,
// per spec §4.2.
type FieldSpec struct {
	DTOField         string
	EntityField      string
	AllowedOperators map[Operator]bool // nil means "all operators"
	Sortable         bool
	SortField        string // effective sort path; defaults to EntityField
}

func (f *FieldSpec) allows(op Operator) bool {
	if f.AllowedOperators == nil {
		return true
	}
	return f.AllowedOperators[op]
}

// Schema is the parsed annotation table for one DTO type, bound to a root
// entity for path/type resolution.
type Schema struct {
	dtoType  reflect.Type
	root     interface{}
	fields   map[string]*FieldSpec
	dtoName  string
}

// BuildSchema parses every `search:"..."` tag on D's fields. Tag grammar:
//
//	search:"entityField,ops=eq|contains,sort,sortAlias=path"
//
// entityField defaults to the Go field name; ops defaults to "all
// operators permitted"; sort marks the field orderable with sortAlias
// equal to entityField; sortAlias implies sort and overrides the alias.
func BuildSchema[D any](root interface{}) *Schema {
	var zero D
	fields := structs.New(zero).Fields()

	s := &Schema{
		dtoType: reflect.TypeOf(zero),
		root:    root,
		fields:  make(map[string]*FieldSpec, len(fields)),
		dtoName: reflect.TypeOf(zero).Name(),
	}

	for _, f := range fields {
		tag := f.Tag("search")
		if tag == "" {
			continue
		}
		parts := strings.Split(tag, ",")
		spec := &FieldSpec{DTOField: f.Name(), EntityField: f.Name()}
		if parts[0] != "" {
			spec.EntityField = parts[0]
		}
		spec.SortField = spec.EntityField

		for _, p := range parts[1:] {
			switch {
			case p == "sort":
				spec.Sortable = true
			case strings.HasPrefix(p, "sortAlias="):
				spec.Sortable = true
				spec.SortField = strings.TrimPrefix(p, "sortAlias=")
			case strings.HasPrefix(p, "ops="):
				spec.AllowedOperators = map[Operator]bool{}
				for _, op := range strings.Split(strings.TrimPrefix(p, "ops="), "|") {
					spec.AllowedOperators[Operator(op)] = true
				}
			}
		}

		s.fields[f.Name()] = spec
	}

	return s
}

func (s *Schema) field(dtoField string) (*FieldSpec, bool) {
	spec, ok := s.fields[dtoField]
	return spec, ok
}

// attributeType resolves the Go type at the end of a dotted entity path,
// walking through meta so BETWEEN/IN parsing sees the real static type.
func (s *Schema) attributeType(path string) (reflect.Type, error) {
	segs := strings.Split(path, ".")
	cur := s.root
	var attr *meta.Attribute
	for _, seg := range segs {
		a, err := meta.Attribute(cur, seg)
		if err != nil {
			return nil, &MetamodelFailure{Path: path, Cause: err}
		}
		attr = a
		if attr.Target != nil {
			cur = reflect.New(attr.Target).Elem().Interface()
		}
	}
	t := attr.GoType
	if attr.IsArray {
		t = t.Elem()
	}
	return t, nil
}

// Validate checks a built SearchCondition against the schema: every
// Condition.dtoField must be annotated, its operator permitted, its value
// convertible via parser, and every Order.dtoField sortable. Resolved
// entityField/sortField values are written back into the tree on success.
// On any violation, every violation is aggregated into one ValidationFailure
// (spec §4.2/§7) rather than failing on the first.
func Validate[D any](sc *SearchCondition[D], schema *Schema, parser *ValueParser) error {
	failure := &ValidationFailure{}

	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			switch v := n.(type) {
			case *Condition:
				validateCondition(v, schema, parser, failure)
			case *Group:
				walk(v.Nodes)
			}
		}
	}
	walk(sc.Nodes)

	for i := range sc.Sort {
		validateOrder(&sc.Sort[i], schema, failure)
	}

	if failure.HasViolations() {
		return failure
	}
	return nil
}

func validateCondition(c *Condition, schema *Schema, parser *ValueParser, failure *ValidationFailure) {
	spec, ok := schema.field(c.DTOField)
	if !ok {
		failure.Add("unknown DTO field %q", c.DTOField)
		return
	}
	if !spec.allows(c.Op) {
		failure.Add("operator %q is not permitted on field %q", c.Op, c.DTOField)
		return
	}

	switch {
	case c.Op.RequiresNoValue():
		// IS_NULL / IS_NOT_NULL: no value to validate (I3).
	case c.Op.RequiresValueList():
		// I3 requires a list shape; an empty list is a valid shape whose
		// predicate compiles to a constant per S4, so only the *type* is
		// checked here — emptiness is handled by the Predicate Builder.
		values, ok := c.Value.([]interface{})
		if !ok {
			failure.Add("operator %q on field %q requires a list value", c.Op, c.DTOField)
			return
		}
		t, err := schema.attributeType(spec.EntityField)
		if err != nil {
			failure.Add("%v", err)
			return
		}
		parsed, err := parser.ParseList(c.DTOField, toStrings(values), t)
		if err != nil {
			failure.Add("%v", err)
			return
		}
		c.Value = parsed
	case c.Op.RequiresRange():
		t, err := schema.attributeType(spec.EntityField)
		if err != nil {
			failure.Add("%v", err)
			return
		}
		lower, upper, err := parser.ParseRange(c.DTOField, toStr(c.Value), toStr(c.Value2), t)
		if err != nil {
			failure.Add("%v", err)
			return
		}
		c.Value, c.Value2 = lower, upper
	default:
		t, err := schema.attributeType(spec.EntityField)
		if err != nil {
			failure.Add("%v", err)
			return
		}
		parsed, err := parser.Parse(c.DTOField, toStr(c.Value), t)
		if err != nil {
			failure.Add("%v", err)
			return
		}
		c.Value = parsed
	}

	c.EntityField = spec.EntityField
}

func validateOrder(o *Order, schema *Schema, failure *ValidationFailure) {
	spec, ok := schema.field(o.DTOField)
	if !ok {
		failure.Add("unknown DTO field %q in sort", o.DTOField)
		return
	}
	if !spec.Sortable {
		failure.Add("field %q is not sortable", o.DTOField)
		return
	}
	o.EntityField = spec.SortField
}

func toStr(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return reflect.ValueOf(v).String()
}

func toStrings(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = toStr(v)
	}
	return out
}
