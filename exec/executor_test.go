package exec

import (
	"testing"

	"github.com/huandu/go-sqlbuilder"

	"github.com/lemmego/searchable/join"
	"github.com/lemmego/searchable/search"
)

type execArticle struct {
	ID    int64 `db:"id,pk"`
	Title string `db:"title"`
}

func TestDedupeDropsDuplicatesAndEmptyStrings(t *testing.T) {
	out := dedupe([]string{"Author", "", "Tags", "Author"})
	if len(out) != 2 || out[0] != "Author" || out[1] != "Tags" {
		t.Fatalf("unexpected dedupe result: %+v", out)
	}
}

func TestContains(t *testing.T) {
	if !contains([]string{"a", "b"}, "b") {
		t.Fatal("expected contains to find b")
	}
	if contains([]string{"a", "b"}, "c") {
		t.Fatal("expected contains to not find c")
	}
}

type execUser struct {
	ID   int64 `db:"id,pk"`
	Name string
}

func TestKeyOfBuildsCompositeStringFromNamedFields(t *testing.T) {
	u := execUser{ID: 42, Name: "ignored"}
	got := keyOf(u, []string{"ID"})
	want := keyString([]interface{}{int64(42)})
	if got != want {
		t.Fatalf("keyOf(%v) = %q, want %q", u, got, want)
	}
}

func TestKeyOfDereferencesPointer(t *testing.T) {
	u := &execUser{ID: 7}
	if keyOf(u, []string{"ID"}) != keyOf(execUser{ID: 7}, []string{"ID"}) {
		t.Fatal("expected pointer and value to produce the same key")
	}
}

func TestKeyStringJoinsComponentsDistinctly(t *testing.T) {
	a := keyString([]interface{}{1, 2})
	b := keyString([]interface{}{12, ""})
	if a == b {
		t.Fatal("expected different component splits to produce different keys")
	}
}

func TestOrderExprsRendersDirection(t *testing.T) {
	plan := join.NewPlan(execArticle{}, "t0")
	out, err := orderExprs(plan, []search.Order{
		{EntityField: "Title", Direction: search.Asc},
		{EntityField: "ID", Direction: search.Desc},
	})
	if err != nil {
		t.Fatalf("orderExprs: %v", err)
	}
	if out[0] != "t0.title ASC" || out[1] != "t0.id DESC" {
		t.Fatalf("unexpected order exprs: %+v", out)
	}
}

func TestKeyTupleInExprBuildsOrOfAndEqualityTuples(t *testing.T) {
	sb := sqlbuilder.NewSelectBuilder()
	expr := keyTupleInExpr(sb, []string{"t0.id"}, [][]interface{}{{1}, {2}, {3}})
	sb.Where(expr)
	sql, args := sb.BuildWithFlavor(sqlbuilder.PostgreSQL)
	if len(args) != 3 {
		t.Fatalf("expected 3 bound args, got %v", args)
	}
	if sql == "" {
		t.Fatal("expected non-empty SQL")
	}
}

func TestKeyTupleInExprCompositeKey(t *testing.T) {
	sb := sqlbuilder.NewSelectBuilder()
	expr := keyTupleInExpr(sb, []string{"t0.order_id", "t0.product_id"}, [][]interface{}{{1, 2}, {3, 4}})
	sb.Where(expr)
	_, args := sb.BuildWithFlavor(sqlbuilder.PostgreSQL)
	if len(args) != 4 {
		t.Fatalf("expected 4 bound args (2 rows x 2 columns), got %v", args)
	}
}

func TestFetchJoinedPathsWithPrimaryAppendsPrimaryOnce(t *testing.T) {
	out := fetchJoinedPathsWithPrimary(nil, []string{"Author"}, []string{"Comments"}, "Comments")
	if len(out) != 2 || out[0] != "Author" || out[1] != "Comments" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestFetchJoinedPathsWithPrimaryNoopWhenEmpty(t *testing.T) {
	out := fetchJoinedPathsWithPrimary(nil, []string{"Author"}, nil, "")
	if len(out) != 1 || out[0] != "Author" {
		t.Fatalf("unexpected result: %+v", out)
	}
}
