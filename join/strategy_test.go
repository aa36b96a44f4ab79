package join

import (
	"strings"
	"testing"

	"github.com/huandu/go-sqlbuilder"
)

type blogDepartment struct {
	ID      int64            `db:"id,pk"`
	Manager *blogDepartment  `db:"manager" rel:"m2o"`
}

type blogAuthor struct {
	ID         int64            `db:"id,pk"`
	Name       string           `db:"name"`
	Department *blogDepartment  `db:"department" rel:"m2o"`
}

type blogComment struct {
	ID     int64       `db:"id,pk"`
	Author *blogAuthor `db:"author" rel:"m2o"`
}

type blogPost struct {
	ID       int64          `db:"id,pk"`
	Author   *blogAuthor    `db:"author" rel:"m2o"`
	Comments []*blogComment `db:"comments" rel:"o2m"`
	Tags     []*blogTag     `db:"tags" rel:"o2m"`
}

type blogTag struct {
	ID   int64       `db:"id,pk"`
	Post *blogPost   `db:"post" rel:"m2o"`
	Name string      `db:"name"`
}

func newSelect() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("*")
	sb.From("posts AS t0")
	return sb
}

func TestRegularOnlyJoinsEmitsLeftJoinsForValidPaths(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(blogPost{}, "t0")

	outcomes := RegularOnlyJoins(sb, plan, blogPost{}, []string{"Author", "Comments"})
	for _, o := range outcomes {
		if o.Kind != Applied {
			t.Fatalf("expected all paths applied, got %v", o)
		}
	}

	sql := sb.String()
	if !strings.Contains(sql, "LEFT JOIN blog_authors AS j_Author") {
		t.Fatalf("expected author join, got sql: %s", sql)
	}
	if !strings.Contains(sql, "LEFT JOIN blog_comments AS j_Comments") {
		t.Fatalf("expected comments join, got sql: %s", sql)
	}
}

func TestRegularOnlyJoinsDegradesUnknownPath(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(blogPost{}, "t0")

	outcomes := RegularOnlyJoins(sb, plan, blogPost{}, []string{"NoSuchField"})
	if len(outcomes) != 1 || outcomes[0].Kind != Degraded {
		t.Fatalf("expected a degraded outcome, got %v", outcomes)
	}
}

func TestApplyJoinsStrategyFetchesToOneButFiltersToMany(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(blogPost{}, "t0")

	ApplyJoinsStrategy(sb, plan, blogPost{}, []string{"Author", "Comments"}, false)

	authorJoin := plan.joined["Author"]
	commentsJoin := plan.joined["Comments"]
	if authorJoin.kind != Fetch {
		t.Fatalf("expected Author fetch-joined, got %v", authorJoin.kind)
	}
	if commentsJoin.kind != FilterOnly {
		t.Fatalf("expected Comments filter-only, got %v", commentsJoin.kind)
	}
}

func TestApplyJoinsStrategyCountNeverFetches(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(blogPost{}, "t0")

	ApplyJoinsStrategy(sb, plan, blogPost{}, []string{"Author"}, true)

	if plan.joined["Author"].kind != FilterOnly {
		t.Fatalf("expected count query to never fetch-join, got %v", plan.joined["Author"].kind)
	}
}

func TestApplyJoinsStrategyAddsExtraCommonToOne(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(blogPost{}, "t0")

	outcomes := ApplyJoinsStrategy(sb, plan, blogPost{}, nil, false)

	found := false
	for _, o := range outcomes {
		if o.Path == "Author" && o.Kind == Applied {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected detected common ToOne field Author to be fetch-joined, got %v", outcomes)
	}
	if plan.joined["Author"].kind != Fetch {
		t.Fatalf("expected extra common ToOne to be fetch-joined")
	}
}

func TestSmartFetchStrategySelectsSinglePrimaryToMany(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(blogPost{}, "t0")

	primary, _ := SmartFetchStrategy(sb, plan, blogPost{}, []string{"Comments", "Tags"}, []string{"Tags.Name"})

	if primary != "Tags" {
		t.Fatalf("expected Tags chosen as primary (appears in conditions), got %q", primary)
	}
	if plan.joined["Tags"].kind != Fetch {
		t.Fatalf("expected primary ToMany fetch-joined")
	}
	if plan.joined["Comments"].kind != FilterOnly {
		// Comments precedes Tags alphabetically but Tags wins via condition-priority.
		t.Fatalf("expected non-primary ToMany filter-only, got %v", plan.joined["Comments"].kind)
	}
}

func TestSmartFetchStrategyFallsBackToAlphabeticalPrimary(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(blogPost{}, "t0")

	primary, _ := SmartFetchStrategy(sb, plan, blogPost{}, []string{"Comments", "Tags"}, nil)

	if primary != "Comments" {
		t.Fatalf("expected alphabetically first ToMany as primary, got %q", primary)
	}
}

func TestSmartFetchStrategyFetchJoinsEveryToOne(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(blogPost{}, "t0")

	SmartFetchStrategy(sb, plan, blogPost{}, []string{"Author"}, nil)

	if plan.joined["Author"].kind != Fetch {
		t.Fatalf("expected ToOne path always fetch-joined under Strategy C")
	}
}

func TestEnsureReusesExistingJoinByPath(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(blogPost{}, "t0")

	if _, err := plan.ensure(sb, "Author", FilterOnly); err != nil {
		t.Fatal(err)
	}
	before := len(plan.joined)
	if _, err := plan.ensure(sb, "Author", Fetch); err != nil {
		t.Fatal(err)
	}
	if len(plan.joined) != before {
		t.Fatalf("expected no new join entries, got %d vs %d", len(plan.joined), before)
	}
	if plan.joined["Author"].kind != Fetch {
		t.Fatalf("expected kind upgraded to Fetch on re-request")
	}
}

func TestColumnResolvesRootAndJoinedPaths(t *testing.T) {
	sb := newSelect()
	plan := NewPlan(blogPost{}, "t0")
	if _, err := plan.ensure(sb, "Author", Fetch); err != nil {
		t.Fatal(err)
	}

	rootCol, err := plan.Column("ID")
	if err != nil || rootCol != "t0.id" {
		t.Fatalf("got %q, %v", rootCol, err)
	}

	joinedCol, err := plan.Column("Author.Name")
	if err != nil || joinedCol != "j_Author.name" {
		t.Fatalf("got %q, %v", joinedCol, err)
	}
}
