package repo

import (
	"context"
	"fmt"

	"github.com/fatih/structs"
	"github.com/go-viper/mapstructure/v2"

	"github.com/lemmego/searchable/exec"
	"github.com/lemmego/searchable/search"
)

// SearchableRepository is the Searchable Service Facade (C11): it pairs a
// Repository's ambient CRUD with a query-compiled Executor for the
// search-condition family of operations (findAll/findOne/findFirst/count/
// exists/deleteByCondition/updateByCondition), plus a DTO-projecting
// findAllDTO. Go methods can't carry extra type parameters, so the DTO type
// varies per call via the free functions below rather than via methods on
// this struct — mirroring exec's own free-function shape.
type SearchableRepository[T any, ID comparable] struct {
	Executor *exec.Executor[T]
}

// NewSearchableRepository wires an Executor into a SearchableRepository.
func NewSearchableRepository[T any, ID comparable](ex *exec.Executor[T]) *SearchableRepository[T, ID] {
	return &SearchableRepository[T, ID]{Executor: ex}
}

// FindAll runs sc against sr's Executor, returning hydrated entities and the
// total match count.
func FindAll[T any, ID comparable, D any](ctx context.Context, sr *SearchableRepository[T, ID], sc *search.SearchCondition[D]) (*exec.Page[T], error) {
	return exec.FindAll(ctx, sr.Executor, sc)
}

// DTOPage is findAllDTO's result: entities projected into D plus the total
// match count across all pages.
type DTOPage[D any] struct {
	Items []D
	Total int64
}

// FindAllDTO runs sc and projects each hydrated entity into D (spec §4.10's
// "apply mapping"): fatih/structs flattens the entity into a field-name
// keyed map, which mapstructure then decodes into D. This matches entities
// to DTO fields by name, the same default search schema tags assume when no
// explicit entityField override is given; callers whose DTO renames fields
// from their entity counterparts should project by hand from FindAll's
// result instead.
func FindAllDTO[T any, ID comparable, D any](ctx context.Context, sr *SearchableRepository[T, ID], sc *search.SearchCondition[D]) (*DTOPage[D], error) {
	page, err := exec.FindAll(ctx, sr.Executor, sc)
	if err != nil {
		return nil, err
	}

	items := make([]D, len(page.Items))
	for i, entity := range page.Items {
		dto, err := projectToDTO[D](entity)
		if err != nil {
			return nil, fmt.Errorf("repo: projecting item %d to DTO: %w", i, err)
		}
		items[i] = dto
	}
	return &DTOPage[D]{Items: items, Total: page.Total}, nil
}

func projectToDTO[D any](entity interface{}) (D, error) {
	var dto D
	flat := structs.Map(entity)
	if err := mapstructure.Decode(flat, &dto); err != nil {
		return dto, err
	}
	return dto, nil
}

// FindOne returns the single entity matching sc, erroring if more than one
// row matches.
func FindOne[T any, ID comparable, D any](ctx context.Context, sr *SearchableRepository[T, ID], sc *search.SearchCondition[D]) (*T, error) {
	return exec.FindOne(ctx, sr.Executor, sc)
}

// FindFirst returns the first entity by sc's normalized sort order, or nil
// if none match.
func FindFirst[T any, ID comparable, D any](ctx context.Context, sr *SearchableRepository[T, ID], sc *search.SearchCondition[D]) (*T, error) {
	return exec.FindFirst(ctx, sr.Executor, sc)
}

// Count returns the number of distinct entities matching sc.
func Count[T any, ID comparable, D any](ctx context.Context, sr *SearchableRepository[T, ID], sc *search.SearchCondition[D]) (int64, error) {
	return exec.Count(ctx, sr.Executor, sc)
}

// Exists reports whether any entity matches sc.
func Exists[T any, ID comparable, D any](ctx context.Context, sr *SearchableRepository[T, ID], sc *search.SearchCondition[D]) (bool, error) {
	return exec.Exists(ctx, sr.Executor, sc)
}

// DeleteByCondition bulk-deletes every row matching sc, returning the number
// of rows removed.
func DeleteByCondition[T any, ID comparable, D any](ctx context.Context, sr *SearchableRepository[T, ID], sc *search.SearchCondition[D]) (int64, error) {
	return exec.DeleteByCondition(ctx, sr.Executor, sc)
}

// UpdateByCondition bulk-updates every row matching sc with patch, returning
// the number of rows affected.
func UpdateByCondition[T any, ID comparable, D any](ctx context.Context, sr *SearchableRepository[T, ID], sc *search.SearchCondition[D], patch map[string]interface{}) (int64, error) {
	return exec.UpdateByCondition(ctx, sr.Executor, sc, patch)
}
