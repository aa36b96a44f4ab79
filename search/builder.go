package search

// Builder implements the typestate state machine of spec §4.3:
//
//	state INITIAL -- where(G) --> HAVE_WHERE
//	HAVE_WHERE -- and(G)|or(G)|sort(S) --> HAVE_WHERE
//	HAVE_WHERE -- page(n)|size(n)|fetchFields(...) --> HAVE_WHERE
//	HAVE_WHERE -- build() --> TERMINAL (returns SearchCondition)
//
// InitialBuilder only exposes Where; Build only becomes reachable once
// Where has produced a Builder, so a caller cannot compile "build before
// where" — the type system enforces the state transition per spec §9.

// InitialBuilder is the INITIAL state: the only legal transition is Where.
type InitialBuilder[D any] struct{}

// NewSearchCondition starts building a SearchCondition validated against D.
func NewSearchCondition[D any]() *InitialBuilder[D] {
	return &InitialBuilder[D]{}
}

// Where establishes the first group and transitions to HAVE_WHERE. Its own
// logical operator is irrelevant at the top level, per spec §4.3.
func (*InitialBuilder[D]) Where(nodes ...Node) *Builder[D] {
	b := &Builder[D]{cond: &SearchCondition[D]{Page: DefaultPage, Size: DefaultSize}}
	b.appendGroup(And, nodes)
	return b
}

// Builder is the HAVE_WHERE state.
type Builder[D any] struct {
	cond *SearchCondition[D]
}

// From seeds a new builder from an existing SearchCondition: nodes are
// deep-copied, orders are copied, and fetchFields starts as a fresh set —
// subsequent mutation on the new builder never touches the original, per
// spec §4.3's from(existing, D) contract.
func From[D any](existing *SearchCondition[D]) *Builder[D] {
	return &Builder[D]{cond: existing.clone()}
}

// And adds to the top-level node list. If nodes is a single flat sequence
// of Conditions, they are inlined with logical operator AND; if it
// contains Groups, the whole group is preserved with AND applied to it.
func (b *Builder[D]) And(nodes ...Node) *Builder[D] {
	b.appendGroup(And, nodes)
	return b
}

// Or is the OR-flavored counterpart of And.
func (b *Builder[D]) Or(nodes ...Node) *Builder[D] {
	b.appendGroup(Or, nodes)
	return b
}

func (b *Builder[D]) appendGroup(op LogicalOp, nodes []Node) {
	if len(nodes) == 0 {
		return
	}

	allConditions := true
	for _, n := range nodes {
		if _, ok := n.(*Condition); !ok {
			allConditions = false
			break
		}
	}

	if allConditions {
		for _, n := range nodes {
			cp := *n.(*Condition)
			cp.LogicalOp = op
			b.cond.Nodes = append(b.cond.Nodes, &cp)
		}
		return
	}

	if len(nodes) == 1 {
		if g, ok := nodes[0].(*Group); ok {
			cp := *g
			cp.LogicalOp = op
			b.cond.Nodes = append(b.cond.Nodes, &cp)
			return
		}
	}

	wrapped := make([]Node, len(nodes))
	for i, n := range nodes {
		wrapped[i] = n.clone()
	}
	b.cond.Nodes = append(b.cond.Nodes, &Group{LogicalOp: op, Nodes: wrapped})
}

// Sort appends ordering terms. Repeated calls accumulate; normalization
// (PK tiebreaker injection) happens later, in exec's Sort & Pagination
// Normalizer (C10), not here.
func (b *Builder[D]) Sort(orders ...Order) *Builder[D] {
	b.cond.Sort = append(b.cond.Sort, orders...)
	return b
}

// Page clamps to max(0, n).
func (b *Builder[D]) Page(n int) *Builder[D] {
	if n < 0 {
		n = 0
	}
	b.cond.Page = n
	return b
}

// Size uses n if >0, else the default (20). Capping to a configured
// maximum happens in the Sort & Pagination Normalizer, which knows the
// configured MaxPageSize; the builder itself only applies the spec §4.3
// "use the value if >0 else default" rule.
func (b *Builder[D]) Size(n int) *Builder[D] {
	if n > 0 {
		b.cond.Size = n
	} else {
		b.cond.Size = DefaultSize
	}
	return b
}

// FetchFields records dotted entity paths to eagerly fetch-join.
// Path safety (I5) is validated later against the Metamodel Adapter, not
// by the builder — the builder only accumulates the requested set.
func (b *Builder[D]) FetchFields(paths ...string) *Builder[D] {
	b.cond.FetchFields = append(b.cond.FetchFields, paths...)
	return b
}

// Build finalizes the SearchCondition. The returned value must be treated
// as read-only: the builder's internal tree is handed out, not copied,
// since the builder is not reused after Build (spec §4.3 lifecycle).
func (b *Builder[D]) Build() *SearchCondition[D] {
	return b.cond
}

// C constructs a single Condition leaf (LogicalOp is overwritten by
// whichever Where/And/Or call it is passed to).
func C(dtoField string, op Operator, value interface{}) *Condition {
	return &Condition{DTOField: dtoField, Op: op, Value: value}
}

// Range constructs a BETWEEN/NOT_BETWEEN Condition leaf with two bounds.
func Range(dtoField string, op Operator, lower, upper interface{}) *Condition {
	return &Condition{DTOField: dtoField, Op: op, Value: lower, Value2: upper}
}

// Values constructs an IN/NOT_IN Condition leaf.
func Values(dtoField string, op Operator, values []interface{}) *Condition {
	return &Condition{DTOField: dtoField, Op: op, Value: values}
}

// G groups nodes under a single logical operator, preserving nesting when
// passed to And/Or.
func G(op LogicalOp, nodes ...Node) *Group {
	return &Group{LogicalOp: op, Nodes: nodes}
}

// SortBy constructs an Order term.
func SortBy(dtoField string, dir Direction) Order {
	return Order{DTOField: dtoField, Direction: dir}
}
