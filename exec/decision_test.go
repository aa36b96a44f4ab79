package exec

import "testing"

type decisionAuthor struct {
	ID int64 `db:"id,pk"`
}

type decisionComment struct {
	ID int64 `db:"id,pk"`
}

type decisionTag struct {
	ID int64 `db:"id,pk"`
}

type decisionPost struct {
	ID       int64               `db:"id,pk"`
	Author   *decisionAuthor     `db:"author" rel:"m2o"`
	Comments []*decisionComment  `db:"comments" rel:"o2m"`
	Tags     []*decisionTag      `db:"tags" rel:"o2m"`
}

func TestUseTwoPhaseFalseForToOneOnly(t *testing.T) {
	if useTwoPhase(decisionPost{}, []string{"Author"}, false) {
		t.Fatal("expected single-phase for a ToOne-only condition set")
	}
}

func TestUseTwoPhaseTrueForSingleToMany(t *testing.T) {
	if !useTwoPhase(decisionPost{}, []string{"Comments"}, false) {
		t.Fatal("expected two-phase when a condition references a ToMany path")
	}
}

func TestUseTwoPhaseTrueForMultipleToMany(t *testing.T) {
	if !useTwoPhase(decisionPost{}, []string{"Comments", "Tags"}, false) {
		t.Fatal("expected two-phase for 2+ ToMany condition paths")
	}
}

func TestUseTwoPhaseForcedByConfig(t *testing.T) {
	if !useTwoPhase(decisionPost{}, []string{"Author"}, true) {
		t.Fatal("expected forceTwoPhase to short-circuit to true")
	}
}
