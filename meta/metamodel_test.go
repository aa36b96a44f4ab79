package meta

import "testing"

type Author struct {
	ID   int64  `db:"id,pk"`
	Name string `db:"name"`
}

type Tag struct {
	ID   int64  `db:"id,pk"`
	Name string `db:"name"`
}

type Comment struct {
	ID      int64  `db:"id,pk"`
	Content string `db:"content"`
	Author  *Author `db:"author" rel:"m2o"`
}

type Post struct {
	ID        int64      `db:"id,pk"`
	ViewCount int        `db:"view_count"`
	Author    *Author    `db:"author" rel:"m2o"`
	Tags      []*Tag     `db:"tags" rel:"m2m"`
	Comments  []*Comment `db:"comments" rel:"o2m"`
}

func TestAttributeKinds(t *testing.T) {
	cases := map[string]Kind{
		"ID":        SingleBasic,
		"ViewCount": SingleBasic,
		"Author":    ManyToOne,
		"Tags":      ManyToMany,
		"Comments":  OneToMany,
	}
	for name, want := range cases {
		attr, err := Attribute(Post{}, name)
		if err != nil {
			t.Fatalf("Attribute(%s): %v", name, err)
		}
		if attr.Kind != want {
			t.Errorf("%s: got %s, want %s", name, attr.Kind, want)
		}
	}
}

func TestAttributeUnknown(t *testing.T) {
	if _, err := Attribute(Post{}, "Nope"); err == nil {
		t.Fatal("expected ErrNoSuchAttribute")
	}
}

func TestPrimaryKey(t *testing.T) {
	pk := PrimaryKey(Post{})
	if len(pk) != 1 || pk[0] != "ID" {
		t.Fatalf("got %v", pk)
	}
}

func TestIsToManyPath(t *testing.T) {
	if !IsToManyPath(Post{}, "Tags") {
		t.Error("Tags should be ToMany")
	}
	if IsToManyPath(Post{}, "Author") {
		t.Error("Author should not be ToMany")
	}
	if !IsToManyPath(Post{}, "Comments.Author") {
		t.Error("path through a ToMany segment should be ToMany")
	}
}

func TestIsValidPath(t *testing.T) {
	if !IsValidPath(Post{}, "Comments.Author") {
		t.Error("expected valid path")
	}
	if IsValidPath(Post{}, "Comments.Bogus") {
		t.Error("expected invalid path to be rejected")
	}
}
