package relation

import (
	"reflect"
	"testing"
)

type department struct {
	ID      int64       `db:"id,pk"`
	Manager *department `db:"manager" rel:"m2o"`
}

type author struct {
	ID         int64       `db:"id,pk"`
	Name       string      `db:"name"`
	Department *department `db:"department" rel:"m2o"`
}

type comment struct {
	ID     int64   `db:"id,pk"`
	Author *author `db:"author" rel:"m2o"`
}

type post struct {
	ID       int64      `db:"id,pk"`
	Author   *author    `db:"author" rel:"m2o"`
	Comments []*comment `db:"comments" rel:"o2m"`
}

func TestDetectCommonToOneFields(t *testing.T) {
	got := DetectCommonToOneFields(post{})
	if !reflect.DeepEqual(got, []string{"Author"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDetectNestedToOneRelationships(t *testing.T) {
	got := DetectNestedToOneRelationships(post{}, 0)
	if !reflect.DeepEqual(got, []string{"Comments.Author"}) {
		t.Fatalf("got %v", got)
	}
}

func TestIsNestedPathSafeForJoin(t *testing.T) {
	if !IsNestedPathSafeForJoin(post{}, "Author.Department") {
		t.Error("expected Author.Department (all ToOne segments) to be safe")
	}
	if IsNestedPathSafeForJoin(post{}, "Comments.Author") {
		t.Error("Comments is ToMany: path must not be considered fetch-safe")
	}
}

func TestIsNestedPathSafeForJoinRejectsCycleBackToRoot(t *testing.T) {
	if IsNestedPathSafeForJoin(department{}, "Manager.Manager") {
		t.Error("a chain that revisits the root type should be rejected")
	}
}

func TestTableNameFor(t *testing.T) {
	if got := TableNameFor(post{}); got != "posts" {
		t.Fatalf("got %q", got)
	}
}

func TestSingularElementName(t *testing.T) {
	if got := SingularElementName("comments"); got != "comment" {
		t.Fatalf("got %q", got)
	}
}
