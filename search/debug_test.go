package search

import (
	"errors"
	"strings"
	"testing"
)

func TestDumpRendersConditionFields(t *testing.T) {
	sc := NewSearchCondition[userDTO]().
		Where(C("name", Equals, "ann")).
		And(C("age", GreaterThan, 18)).
		Build()

	out := Dump(sc)
	if !strings.Contains(out, "ann") || !strings.Contains(out, "18") {
		t.Fatalf("expected dump to surface the condition values, got: %s", out)
	}
}

func TestDumpNilSearchCondition(t *testing.T) {
	if Dump[userDTO](nil) != "<nil SearchCondition>" {
		t.Fatal("expected nil-safe placeholder")
	}
}

func TestDumpNodeRendersGroup(t *testing.T) {
	sc := NewSearchCondition[userDTO]().
		Where(C("name", Equals, "ann")).
		Or(G(Or, C("name", Equals, "bob"))).
		Build()

	out := DumpNode(sc.Nodes[1])
	if !strings.Contains(out, "bob") {
		t.Fatalf("expected group dump to contain nested condition value, got: %s", out)
	}
}

func TestParseFailureVerboseDumpsRawValue(t *testing.T) {
	pf := &ParseFailure{Field: "age", Value: "not-a-number", Cause: errors.New("invalid syntax")}
	out := pf.Verbose()
	if !strings.Contains(out, "not-a-number") || !strings.Contains(out, "age") {
		t.Fatalf("expected verbose dump to contain field and raw value, got: %s", out)
	}
}
