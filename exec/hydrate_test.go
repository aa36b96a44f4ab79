package exec

import (
	"strings"
	"testing"

	"github.com/huandu/go-sqlbuilder"

	"github.com/lemmego/searchable/join"
)

type hydrateAuthor struct {
	ID   int64  `db:"id,pk"`
	Name string `db:"name"`
}

type hydratePost struct {
	ID     int64          `db:"id,pk"`
	Title  string         `db:"title"`
	Author *hydrateAuthor `db:"author" rel:"m2o"`
}

func newHydratePlan(t *testing.T, fetch []string) (*sqlbuilder.SelectBuilder, *join.Plan) {
	t.Helper()
	sb := sqlbuilder.NewSelectBuilder()
	sb.From("posts AS p")
	plan := join.NewPlan(hydratePost{}, "p")
	for _, path := range fetch {
		if err := ensurePublic(t, plan, sb, path); err != nil {
			t.Fatalf("ensure(%s): %v", path, err)
		}
	}
	return sb, plan
}

// ensurePublic exercises join.Plan through the Strategy layer rather than
// its unexported ensure method, since exec has no access to that.
func ensurePublic(t *testing.T, plan *join.Plan, sb *sqlbuilder.SelectBuilder, path string) error {
	t.Helper()
	_, outcomes := join.SmartFetchStrategy(sb, plan, hydratePost{}, []string{path}, nil)
	for _, o := range outcomes {
		if o.Kind == join.Failed {
			return joinFailure(o)
		}
	}
	return nil
}

func joinFailure(o join.Outcome) error {
	return &joinErr{o}
}

type joinErr struct{ o join.Outcome }

func (e *joinErr) Error() string { return e.o.Reason }

func TestColumnPrefixUsesColumnNamesNotGoFieldNames(t *testing.T) {
	_, plan := newHydratePlan(t, []string{"Author"})
	prefix, err := columnPrefix(hydratePost{}, "Author")
	if err != nil {
		t.Fatalf("columnPrefix: %v", err)
	}
	if prefix != "author" {
		t.Fatalf("expected prefix %q, got %q", "author", prefix)
	}
	_ = plan
}

func TestTargetOfResolvesRelationshipType(t *testing.T) {
	target, err := targetOf(hydratePost{}, "Author")
	if err != nil {
		t.Fatalf("targetOf: %v", err)
	}
	if _, ok := target.(hydrateAuthor); !ok {
		t.Fatalf("expected hydrateAuthor zero value, got %T", target)
	}
}

func TestTargetOfRejectsNonRelationshipPath(t *testing.T) {
	if _, err := targetOf(hydratePost{}, "Title"); err == nil {
		t.Fatal("expected error resolving a scalar field as a relationship path")
	}
}

func TestScalarColumnsSkipsRelationshipAttributes(t *testing.T) {
	_, plan := newHydratePlan(t, nil)
	cols, err := scalarColumns(hydratePost{}, plan, "", "")
	if err != nil {
		t.Fatalf("scalarColumns: %v", err)
	}
	for _, c := range cols {
		if strings.Contains(c.dest, "author") {
			t.Fatalf("relationship attribute leaked into scalar columns: %+v", c)
		}
	}
	if len(cols) != 2 {
		t.Fatalf("expected 2 scalar columns (id, title), got %d: %+v", len(cols), cols)
	}
}

func TestProjectionColumnsIncludesFetchedRelationshipColumns(t *testing.T) {
	sb, plan := newHydratePlan(t, []string{"Author"})
	cols, err := projectionColumns(hydratePost{}, plan, []string{"Author"})
	if err != nil {
		t.Fatalf("projectionColumns: %v", err)
	}

	var sawAuthorName bool
	for _, c := range cols {
		if c.dest == "author.name" {
			sawAuthorName = true
		}
	}
	if !sawAuthorName {
		t.Fatalf("expected an author.name destination column, got %+v", cols)
	}
	_ = sb
}

func TestSelectListFormatsAliasedColumns(t *testing.T) {
	cols := []projectionColumn{{expr: "p.id", dest: "id"}, {expr: "j_author.name", dest: "author.name"}}
	list := selectList(cols)
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	if list[0] != `p.id AS "id"` {
		t.Fatalf("unexpected first entry: %s", list[0])
	}
	if list[1] != `j_author.name AS "author.name"` {
		t.Fatalf("unexpected second entry: %s", list[1])
	}
}
