package exec

import "github.com/lemmego/searchable/meta"

// useTwoPhase implements spec §4.8's decision function:
//
//	toMany = { p ∈ paths(conditions) : isToManyPath(p) }
//	useTwoPhase = |toMany| ≥ 2 OR (|toMany| = 1 AND any condition references a ToMany path)
//
// Read literally, the second disjunct's second conjunct is implied by its
// first (toMany is already built only from paths a condition references), so this
// collapses to "at least one condition path is ToMany." The branch is
// kept distinct anyway, both to mirror the spec's stated shape and
// because forceTwoPhase (TwoPhaseAlwaysOn) short-circuits independently of
// either.
func useTwoPhase(root interface{}, conditionPaths []string, forceTwoPhase bool) bool {
	if forceTwoPhase {
		return true
	}

	var toManyCount int
	for _, p := range conditionPaths {
		if meta.IsToManyPath(root, p) {
			toManyCount++
		}
	}

	if toManyCount >= 2 {
		return true
	}
	return toManyCount == 1
}
