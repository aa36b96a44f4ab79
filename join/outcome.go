// Package join is the Join Strategy Manager (C8): it rewrites a
// go-sqlbuilder SELECT root with the joins a strategy calls for, and never
// issues a query itself — only exec does that, composing a Plan's
// resolver with the Predicate Builder's SQL.
package join

import "fmt"

// OutcomeKind discriminates what happened when a path was asked to join,
// per the re-architecture guidance in spec §9 ("prefer a result type over
// throwing for expected, recoverable branches").
type OutcomeKind int

const (
	Applied OutcomeKind = iota
	Degraded
	Failed
)

// Outcome reports, for one requested path, whether the join was applied as
// asked, applied in a weaker form (e.g. a fetch request fell back to a
// filter-only join), or could not be applied at all. Invalid or unknown
// paths are Degraded, never Failed — spec §4.7: "missing or invalid paths
// are skipped with a warning, not an error."
type Outcome struct {
	Path   string
	Kind   OutcomeKind
	Reason string
}

func (o Outcome) String() string {
	if o.Kind == Applied {
		return fmt.Sprintf("%s: applied", o.Path)
	}
	return fmt.Sprintf("%s: %s", o.Path, o.Reason)
}

func applied(path string) Outcome { return Outcome{Path: path, Kind: Applied} }

func degraded(path, reason string) Outcome {
	return Outcome{Path: path, Kind: Degraded, Reason: reason}
}
