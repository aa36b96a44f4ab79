package search

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// ValidationFailure aggregates every rule violation found while validating
// a SearchCondition against a DTO schema (spec §7) — never just the first.
type ValidationFailure struct {
	Violations []string
}

func (e *ValidationFailure) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("search: validation failed: %s", e.Violations[0])
	}
	return fmt.Sprintf("search: validation failed with %d violations: %v", len(e.Violations), e.Violations)
}

func (e *ValidationFailure) Add(format string, args ...interface{}) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

func (e *ValidationFailure) HasViolations() bool {
	return len(e.Violations) > 0
}

// ParseFailure reports that a raw string value could not be coerced to the
// attribute's static type.
type ParseFailure struct {
	Field string
	Value string
	Cause error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("search: cannot parse %q for field %q: %v", e.Value, e.Field, e.Cause)
}

func (e *ParseFailure) Unwrap() error { return e.Cause }

// Verbose dumps the offending raw value with go-spew instead of fmt's %v,
// so a byte slice, a wrapped pointer, or an unexported-field struct passed
// in as Value shows its actual shape instead of a generic address or "%!v".
func (e *ParseFailure) Verbose() string {
	return fmt.Sprintf("search: cannot parse field %q: %v\n%s", e.Field, e.Cause, spew.Sdump(e.Value))
}

// MetamodelFailure reports that a path references a non-existent attribute.
// Condition-critical occurrences are surfaced; advisory occurrences
// (auto-detected common ToOne / nested ToOne inference) are logged and
// skipped by callers instead of propagating this type.
type MetamodelFailure struct {
	Path  string
	Cause error
}

func (e *MetamodelFailure) Error() string {
	return fmt.Sprintf("search: invalid path %q: %v", e.Path, e.Cause)
}

func (e *MetamodelFailure) Unwrap() error { return e.Cause }
