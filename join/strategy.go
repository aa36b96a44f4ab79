package join

import (
	"sort"

	"github.com/huandu/go-sqlbuilder"

	"github.com/lemmego/searchable/meta"
	"github.com/lemmego/searchable/relation"
)

// Strategy names the three join-planning modes of spec §4.7. The manager
// never issues a query itself; it only rewrites sb and Plan.
type Strategy int

const (
	RegularOnly Strategy = iota // Strategy A: Phase 1 / count / delete / update
	ApplyJoins                  // Strategy B: single-phase select or count
	SmartFetch                  // Strategy C: Phase 2 hydration
)

// RegularOnlyJoins implements Strategy A: every path gets a LEFT join,
// never a fetch join. Invalid or unknown paths are skipped with a warning
// (reported via the returned Outcomes), never an error.
func RegularOnlyJoins(sb *sqlbuilder.SelectBuilder, plan *Plan, root interface{}, paths []string) []Outcome {
	sorted := sortedCopy(paths)
	var outcomes []Outcome
	for _, path := range sorted {
		if !meta.IsValidPath(root, path) {
			outcomes = append(outcomes, degraded(path, "unknown or invalid path, skipped"))
			continue
		}
		if _, err := plan.ensure(sb, path, FilterOnly); err != nil {
			outcomes = append(outcomes, degraded(path, err.Error()))
			continue
		}
		outcomes = append(outcomes, applied(path))
	}
	plan.outcomes = append(plan.outcomes, outcomes...)
	return outcomes
}

// ApplyJoinsStrategy implements Strategy B: splits paths into ToOne/ToMany,
// fetch-joins ToOne unless isCount, always filter-joins ToMany to preserve
// database-side LIMIT, and (for non-count queries) additionally
// fetch-joins every detected common ToOne field not already requested.
func ApplyJoinsStrategy(sb *sqlbuilder.SelectBuilder, plan *Plan, root interface{}, paths []string, isCount bool) []Outcome {
	sorted := sortedCopy(paths)
	requested := map[string]bool{}
	var outcomes []Outcome

	for _, path := range sorted {
		requested[path] = true
		if !meta.IsValidPath(root, path) {
			outcomes = append(outcomes, degraded(path, "unknown or invalid path, skipped"))
			continue
		}

		kind := FilterOnly
		if !isCount && !meta.IsToManyPath(root, path) {
			kind = Fetch
		}

		if _, err := plan.ensure(sb, path, kind); err != nil {
			if kind == Fetch {
				// Dialect/metamodel refused the fetch form; degrade to a
				// filter-only join rather than fail the whole query.
				if _, err2 := plan.ensure(sb, path, FilterOnly); err2 == nil {
					outcomes = append(outcomes, degraded(path, "fetch join unavailable, applied as filter-only"))
					continue
				}
			}
			outcomes = append(outcomes, degraded(path, err.Error()))
			continue
		}
		outcomes = append(outcomes, applied(path))
	}

	if !isCount {
		for _, extra := range relation.DetectCommonToOneFields(root) {
			if requested[extra] {
				continue
			}
			if _, err := plan.ensure(sb, extra, Fetch); err != nil {
				outcomes = append(outcomes, degraded(extra, err.Error()))
				continue
			}
			outcomes = append(outcomes, applied(extra))
		}
	}

	plan.outcomes = append(plan.outcomes, outcomes...)
	return outcomes
}

// SmartFetchStrategy implements Strategy C: every ToOne path in the
// supplied set (already the union of fetchFields, condition paths, and
// detected common ToOne fields per spec §4.8's Phase 2 description) is
// fetch-joined. If more than one ToMany path is present, exactly one
// "primary" is selected — preferring a path that conditionPaths reference
// (directly or through a path beneath it), alphabetically first among ties, else the alphabetically
// first ToMany path overall — and fetch-joined; every other ToMany path is
// joined filter-only, to be serviced by the store's batch-load mechanism
// instead (spec §4.8).
func SmartFetchStrategy(sb *sqlbuilder.SelectBuilder, plan *Plan, root interface{}, paths, conditionPaths []string) (primaryToMany string, outcomes []Outcome) {
	sorted := sortedCopy(paths)
	conditionSet := map[string]bool{}
	for _, p := range conditionPaths {
		conditionSet[p] = true
	}

	var toMany []string
	for _, path := range sorted {
		if !meta.IsValidPath(root, path) {
			outcomes = append(outcomes, degraded(path, "unknown or invalid path, skipped"))
			continue
		}
		if meta.IsToManyPath(root, path) {
			toMany = append(toMany, path)
			continue
		}
		if _, err := plan.ensure(sb, path, Fetch); err != nil {
			outcomes = append(outcomes, degraded(path, err.Error()))
			continue
		}
		outcomes = append(outcomes, applied(path))
	}

	if len(toMany) > 0 {
		primaryToMany = choosePrimary(toMany, conditionSet)
		for _, path := range toMany {
			kind := FilterOnly
			if path == primaryToMany {
				kind = Fetch
			}
			if _, err := plan.ensure(sb, path, kind); err != nil {
				outcomes = append(outcomes, degraded(path, err.Error()))
				continue
			}
			outcomes = append(outcomes, applied(path))
		}
	}

	plan.outcomes = append(plan.outcomes, outcomes...)
	return primaryToMany, outcomes
}

// choosePrimary implements spec §4.7's primary-ToMany selection: the first
// (alphabetically stable) path that the predicate conditions reference,
// either as the path itself or as a path beneath it ("Tags.Name" references
// "Tags"), else the alphabetically first path overall.
func choosePrimary(toMany []string, conditionSet map[string]bool) string {
	for _, p := range toMany {
		if conditionSet[p] {
			return p
		}
		for c := range conditionSet {
			if len(c) > len(p) && c[:len(p)+1] == p+"." {
				return p
			}
		}
	}
	return toMany[0]
}

func sortedCopy(paths []string) []string {
	out := append([]string(nil), paths...)
	sort.Strings(out)
	return out
}
