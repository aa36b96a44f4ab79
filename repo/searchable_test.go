package repo

import "testing"

type projectionArticle struct {
	ID      int64
	Title   string
	Draft   bool
	private string
}

type projectionArticleDTO struct {
	ID    int64
	Title string
}

func TestProjectToDTOMapsFieldsByName(t *testing.T) {
	entity := projectionArticle{ID: 7, Title: "hello", Draft: true, private: "x"}
	dto, err := projectToDTO[projectionArticleDTO](entity)
	if err != nil {
		t.Fatalf("projectToDTO: %v", err)
	}
	if dto.ID != 7 || dto.Title != "hello" {
		t.Fatalf("unexpected projection: %+v", dto)
	}
}

func TestProjectToDTOIgnoresUnmatchedEntityFields(t *testing.T) {
	entity := projectionArticle{ID: 1, Title: "t", Draft: true}
	dto, err := projectToDTO[projectionArticleDTO](entity)
	if err != nil {
		t.Fatalf("projectToDTO: %v", err)
	}
	if dto != (projectionArticleDTO{ID: 1, Title: "t"}) {
		t.Fatalf("unexpected projection: %+v", dto)
	}
}

func TestProjectToDTOHandlesPointerEntity(t *testing.T) {
	entity := &projectionArticle{ID: 3, Title: "ptr"}
	dto, err := projectToDTO[projectionArticleDTO](entity)
	if err != nil {
		t.Fatalf("projectToDTO: %v", err)
	}
	if dto.ID != 3 || dto.Title != "ptr" {
		t.Fatalf("unexpected projection: %+v", dto)
	}
}
