package search

import "fmt"

// ColumnResolver resolves a resolved dotted entity path to a qualified SQL
// column reference (e.g. "t1.name"), applying whatever joins the Join
// Strategy Manager has already planned for the current statement. exec
// wires a join-plan-backed resolver in; search itself stays join-agnostic.
type ColumnResolver interface {
	Column(entityField string) (string, error)
	// IsJSONText reports whether entityField's column stores a
	// JSON-serialized value as text, per the spec §4.5 JSON-text
	// heuristic: string-pattern operators still compile to LIKE over the
	// serialized form rather than attempting JSON-path parsing.
	IsJSONText(entityField string) bool
}

// BuildPredicate compiles a validated Node tree into one boolean SQL
// expression against b, resolving columns via resolver. Nodes must already
// have EntityField populated by Validate.
func BuildPredicate(b Builder, node Node, resolver ColumnResolver) (string, error) {
	switch v := node.(type) {
	case *Condition:
		return buildConditionExpr(b, v, resolver)
	case *Group:
		return buildGroupExpr(b, v, resolver)
	default:
		return "", fmt.Errorf("search: unknown node type %T", node)
	}
}

// BuildPredicateTree compiles a top-level node list the way
// SearchCondition.Nodes is evaluated: each node's own LogicalOp says how it
// joins with the node before it (the very first node's op is irrelevant,
// per spec §3).
func BuildPredicateTree(b Builder, nodes []Node, resolver ColumnResolver) (string, error) {
	var andGroup, orGroup []string

	for _, n := range nodes {
		expr, err := BuildPredicate(b, n, resolver)
		if err != nil {
			return "", err
		}
		op := logicalOpOf(n)
		if op == Or {
			orGroup = append(orGroup, expr)
		} else {
			andGroup = append(andGroup, expr)
		}
	}

	var parts []string
	if len(andGroup) > 0 {
		parts = append(parts, b.And(andGroup...))
	}
	if len(orGroup) > 0 {
		parts = append(parts, b.Or(orGroup...))
	}
	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	default:
		return b.And(parts...), nil
	}
}

func logicalOpOf(n Node) LogicalOp {
	switch v := n.(type) {
	case *Condition:
		return v.LogicalOp
	case *Group:
		return v.LogicalOp
	default:
		return And
	}
}

func buildGroupExpr(b Builder, g *Group, resolver ColumnResolver) (string, error) {
	exprs := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		expr, err := BuildPredicate(b, n, resolver)
		if err != nil {
			return "", err
		}
		exprs = append(exprs, expr)
	}
	if len(exprs) == 0 {
		return "", fmt.Errorf("search: empty group")
	}
	if g.LogicalOp == Or {
		return b.Or(exprs...), nil
	}
	return b.And(exprs...), nil
}

func buildConditionExpr(b Builder, c *Condition, resolver ColumnResolver) (string, error) {
	col, err := resolver.Column(c.EntityField)
	if err != nil {
		return "", err
	}

	switch c.Op {
	case Equals:
		if c.Value == nil {
			return b.IsNull(col), nil
		}
		return b.Equal(col, c.Value), nil
	case NotEquals:
		if c.Value == nil {
			return b.IsNotNull(col), nil
		}
		return b.NotEqual(col, c.Value), nil
	case GreaterThan:
		return b.GreaterThan(col, c.Value), nil
	case GreaterThanOrEqualTo:
		return b.GreaterEqualThan(col, c.Value), nil
	case LessThan:
		return b.LessThan(col, c.Value), nil
	case LessThanOrEqualTo:
		return b.LessEqualThan(col, c.Value), nil

	case Contains:
		return likeExpr(b, col, "%"+fmt.Sprint(c.Value)+"%", false), nil
	case NotContains:
		return likeExpr(b, col, "%"+fmt.Sprint(c.Value)+"%", true), nil
	case StartsWith:
		return likeExpr(b, col, fmt.Sprint(c.Value)+"%", false), nil
	case NotStartsWith:
		return likeExpr(b, col, fmt.Sprint(c.Value)+"%", true), nil
	case EndsWith:
		return likeExpr(b, col, "%"+fmt.Sprint(c.Value), false), nil
	case NotEndsWith:
		return likeExpr(b, col, "%"+fmt.Sprint(c.Value), true), nil

	case IsNull:
		return b.IsNull(col), nil
	case IsNotNull:
		return b.IsNotNull(col), nil

	case In:
		values, _ := c.Value.([]interface{})
		if len(values) == 0 {
			return "0 = 1", nil // constant FALSE, per spec S4
		}
		return b.In(col, values...), nil
	case NotIn:
		values, _ := c.Value.([]interface{})
		if len(values) == 0 {
			return "1 = 1", nil // constant TRUE, per spec S4
		}
		return b.NotIn(col, values...), nil

	case Between:
		return b.Between(col, c.Value, c.Value2), nil
	case NotBetween:
		return b.NotBetween(col, c.Value, c.Value2), nil

	default:
		return "", fmt.Errorf("search: unsupported operator %q", c.Op)
	}
}

// likeExpr builds the case-insensitive LIKE shape from spec §4.5. The
// JSON-text heuristic changes nothing here on purpose: a JSON-serialized
// column still compares LIKE over its serialized text, never a JSON-path
// predicate (spec §4.5, §9).
func likeExpr(b Builder, col, pattern string, negate bool) string {
	expr := fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", col, b.Var(pattern))
	if negate {
		return b.Not(expr)
	}
	return expr
}
