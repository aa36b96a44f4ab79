package search

// SearchCondition is the immutable (after Build) tree of spec §3: ordered
// top-level nodes, an ordered sort sequence, pagination, and a set of
// dotted entity paths to fetch-join. D is the DTO type the condition was
// validated against.
type SearchCondition[D any] struct {
	Nodes       []Node
	Sort        []Order
	Page        int
	Size        int
	FetchFields []string
}

// DefaultPage and DefaultSize are the spec §3 defaults (page 0, size 20).
const (
	DefaultPage = 0
	DefaultSize = 20
)

// clone deep-copies nodes and shallow-copies orders, per the from(existing)
// contract in spec §4.3: subsequent mutation of the copy must never touch
// the original.
func (sc *SearchCondition[D]) clone() *SearchCondition[D] {
	cp := &SearchCondition[D]{
		Page: sc.Page,
		Size: sc.Size,
	}
	cp.Nodes = make([]Node, len(sc.Nodes))
	for i, n := range sc.Nodes {
		cp.Nodes[i] = n.clone()
	}
	cp.Sort = append([]Order(nil), sc.Sort...)
	cp.FetchFields = append([]string(nil), sc.FetchFields...)
	return cp
}

// ConditionPaths returns the set of distinct entity paths referenced by any
// Condition leaf in the tree (used by the Relationship Analyzer / Join
// Strategy Manager and the two-phase decision function).
func (sc *SearchCondition[D]) ConditionPaths() []string {
	seen := map[string]bool{}
	var out []string
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			switch v := n.(type) {
			case *Condition:
				if v.EntityField != "" && !seen[v.EntityField] {
					seen[v.EntityField] = true
					out = append(out, v.EntityField)
				}
			case *Group:
				walk(v.Nodes)
			}
		}
	}
	walk(sc.Nodes)
	return out
}
