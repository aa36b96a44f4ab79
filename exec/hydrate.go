package exec

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/lemmego/searchable/join"
	"github.com/lemmego/searchable/meta"
)

func zeroOfTarget(attr *meta.Attribute) interface{} {
	return reflect.New(attr.Target).Elem().Interface()
}

// projectionColumn is one SELECT column destined for carta.Map hydration:
// expr is the qualified source ("alias.column"); dest is the dot-path
// alias carta resolves back onto the destination struct's nested fields
// (jackskj/carta documents this exact "parent.child" column-alias
// convention for mapping a joined result set into a nested struct graph).
type projectionColumn struct {
	expr string
	dest string
}

// projectionColumns enumerates every scalar (non-relationship) attribute
// of root plus every fetch-joined path's target type, building the column
// list Phase 2 selects and the aliases carta.Map needs to reassemble the
// nested entity graph in one scan.
func projectionColumns(root interface{}, plan *join.Plan, fetchPaths []string) ([]projectionColumn, error) {
	var out []projectionColumn

	rootCols, err := scalarColumns(root, plan, "", "")
	if err != nil {
		return nil, err
	}
	out = append(out, rootCols...)

	for _, path := range fetchPaths {
		target, err := targetOf(root, path)
		if err != nil {
			return nil, err
		}
		prefix, err := columnPrefix(root, path)
		if err != nil {
			return nil, err
		}
		cols, err := scalarColumns(target, plan, path, prefix)
		if err != nil {
			return nil, err
		}
		out = append(out, cols...)
	}

	return out, nil
}

func scalarColumns(entity interface{}, plan *join.Plan, path, prefix string) ([]projectionColumn, error) {
	var out []projectionColumn
	for name, attr := range meta.Attributes(entity) {
		if attr.Kind != meta.SingleBasic {
			continue
		}
		field := name
		if path != "" {
			field = path + "." + name
		}
		expr, err := plan.Column(field)
		if err != nil {
			return nil, err
		}
		dest := attr.Column
		if prefix != "" {
			dest = prefix + "." + attr.Column
		}
		out = append(out, projectionColumn{expr: expr, dest: dest})
	}
	return out, nil
}

// targetOf resolves the entity type at the end of a dotted ToOne/ToMany
// path from root.
func targetOf(root interface{}, path string) (interface{}, error) {
	segs := strings.Split(path, ".")
	cur := root
	for _, seg := range segs {
		attr, err := meta.Attribute(cur, seg)
		if err != nil {
			return nil, err
		}
		if attr.Target == nil {
			return nil, fmt.Errorf("exec: %q is not a relationship attribute", path)
		}
		cur = zeroOfTarget(attr)
	}
	return cur, nil
}

// columnPrefix builds the dotted carta alias prefix for path, using each
// segment's own column name (its struct field's db tag, defaulted to
// snake_case) rather than its Go field name.
func columnPrefix(root interface{}, path string) (string, error) {
	segs := strings.Split(path, ".")
	cur := root
	var parts []string
	for _, seg := range segs {
		attr, err := meta.Attribute(cur, seg)
		if err != nil {
			return "", err
		}
		parts = append(parts, attr.Column)
		if attr.Target != nil {
			cur = zeroOfTarget(attr)
		}
	}
	return strings.Join(parts, "."), nil
}

func selectList(cols []projectionColumn) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = fmt.Sprintf(`%s AS "%s"`, c.expr, c.dest)
	}
	return out
}
