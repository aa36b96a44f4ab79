package search

import "github.com/k0kubun/pp/v3"

// debugPrinter is configured once so that Dump output is stable regardless
// of the caller's terminal (no color codes in logs).
var debugPrinter = func() *pp.PrettyPrinter {
	p := pp.New()
	p.SetColoringEnabled(false)
	return p
}()

// Dump renders a built SearchCondition as a human-inspectable tree: the
// Node union, Sort, Page/Size and FetchFields all expand recursively,
// which is far more useful on a debug log line than the default %v of a
// struct holding an interface slice.
func Dump[D any](sc *SearchCondition[D]) string {
	if sc == nil {
		return "<nil SearchCondition>"
	}
	return debugPrinter.Sprint(sc)
}

// DumpNode renders a single Node (Condition or Group) the same way, for
// callers inspecting one branch of the tree rather than the whole condition.
func DumpNode(n Node) string {
	return debugPrinter.Sprint(n)
}
