package join

import (
	"strings"
	"testing"
)

type planAuthor struct {
	ID   int64  `db:"id,pk"`
	Name string `db:"name"`
}

type planPost struct {
	ID      int64       `db:"id,pk"`
	Meta    string      `db:"meta,json"`
	Author  *planAuthor `db:"author" rel:"m2o"`
}

// planTag/planTaggedPost mirror spec.md's S2 scenario: Post<->Tag joined
// through a post_tag junction table, no direct FK column on either side.
type planTag struct {
	ID   int64  `db:"id,pk"`
	Name string `db:"name"`
}

type planTaggedPost struct {
	ID   int64      `db:"id,pk"`
	Tags []*planTag `db:"tags" rel:"m2m,through=post_tag"`
}

func TestPlanColumnResolvesRootAttribute(t *testing.T) {
	plan := NewPlan(planPost{}, "t0")
	col, err := plan.Column("ID")
	if err != nil {
		t.Fatal(err)
	}
	if col != "t0.id" {
		t.Fatalf("got %q", col)
	}
}

func TestPlanColumnErrorsForUnjoinedPath(t *testing.T) {
	plan := NewPlan(planPost{}, "t0")
	if _, err := plan.Column("Author.Name"); err == nil {
		t.Fatal("expected an error resolving a path with no join applied yet")
	}
}

func TestPlanColumnResolvesAfterJoinApplied(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(planPost{}, "t0")
	if _, err := plan.ensure(sb, "Author", Fetch); err != nil {
		t.Fatal(err)
	}
	col, err := plan.Column("Author.Name")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(col, ".name") {
		t.Fatalf("got %q", col)
	}
}

func TestPlanIsJSONTextTrueForTaggedColumn(t *testing.T) {
	plan := NewPlan(planPost{}, "t0")
	if !plan.IsJSONText("Meta") {
		t.Fatal("expected Meta to report JSONText per its db tag")
	}
}

func TestPlanIsJSONTextFalseForUnjoinedNestedPath(t *testing.T) {
	plan := NewPlan(planPost{}, "t0")
	if plan.IsJSONText("Author.Name") {
		t.Fatal("expected false when the parent path was never joined")
	}
}

func TestPlanEnsureIsIdempotentPerPath(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(planPost{}, "t0")
	jp1, err := plan.ensure(sb, "Author", FilterOnly)
	if err != nil {
		t.Fatal(err)
	}
	jp2, err := plan.ensure(sb, "Author", FilterOnly)
	if err != nil {
		t.Fatal(err)
	}
	if jp1 != jp2 {
		t.Fatal("expected the same joinedPath on a repeated ensure call")
	}
}

func TestPlanEnsureManyToManyJoinsThroughJunctionTable(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(planTaggedPost{}, "t0")

	jp, err := plan.ensure(sb, "Tags", Fetch)
	if err != nil {
		t.Fatal(err)
	}

	sql := sb.String()
	if !strings.Contains(sql, "LEFT JOIN post_tag AS j_Tags_through ON t0.id = j_Tags_through.plan_tagged_post_id") {
		t.Fatalf("expected join through post_tag junction table, got sql: %s", sql)
	}
	if !strings.Contains(sql, "j_Tags_through.plan_tag_id = j_Tags.id") {
		t.Fatalf("expected second hop from junction to tag table, got sql: %s", sql)
	}

	col, err := plan.Column("Tags.Name")
	if err != nil {
		t.Fatal(err)
	}
	if col != "j_Tags.name" {
		t.Fatalf("got %q", col)
	}
	if !jp.isToMany {
		t.Fatal("expected ManyToMany joinedPath to report isToMany")
	}
}

func TestPlanEnsureManyToManyErrorsWithoutJunctionTag(t *testing.T) {
	type untaggedM2M struct {
		ID   int64      `db:"id,pk"`
		Tags []*planTag `db:"tags" rel:"m2m"`
	}

	sb := newSelect()
	plan := NewPlan(untaggedM2M{}, "t0")
	if _, err := plan.ensure(sb, "Tags", Fetch); err == nil {
		t.Fatal("expected an error for a many-to-many attribute with no through= junction table")
	}
}

func TestPlanEnsureUpgradesFilterOnlyToFetch(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(planPost{}, "t0")
	if _, err := plan.ensure(sb, "Author", FilterOnly); err != nil {
		t.Fatal(err)
	}
	jp, err := plan.ensure(sb, "Author", Fetch)
	if err != nil {
		t.Fatal(err)
	}
	if jp.kind != Fetch {
		t.Fatal("expected kind upgraded to Fetch")
	}
}
