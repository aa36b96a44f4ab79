package model

import "testing"

type widget struct {
	ID   int64
	Name string
}

func TestDefineRegistersTableOverride(t *testing.T) {
	Define(Definition[widget, struct{}]{Table: "legacy_widgets"})

	got, ok := TableNameOverride(widget{})
	if !ok || got != "legacy_widgets" {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestTableNameOverrideAbsentByDefault(t *testing.T) {
	type unregistered struct{ ID int64 }
	if _, ok := TableNameOverride(unregistered{}); ok {
		t.Fatal("expected no override for a type never passed to Define")
	}
}

func TestDefinePanicsOnEmptyTable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty table name")
		}
	}()
	Define(Definition[widget, struct{}]{Table: ""})
}

func TestColExtractsTypedValue(t *testing.T) {
	nameCol := Col[widget, string]("name", func(w *widget) string { return w.Name })
	w := &widget{ID: 1, Name: "sprocket"}
	if got := nameCol.Extract(w); got != "sprocket" {
		t.Fatalf("got %v", got)
	}
}
