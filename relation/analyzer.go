// Package relation is the Relationship Analyzer (C7): pure functions over
// the meta package that classify entity paths and discover the nested
// ToOne relationships worth fetch-joining for free. Adapted from the
// teacher's relation.go, which only carried the o2o/o2m/m2o/m2m constants —
// those constants now live as meta.Kind and this package builds the actual
// analysis the search engine needs on top of them.
package relation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gertd/go-pluralize"
	"github.com/jinzhu/inflection"

	"github.com/lemmego/searchable/meta"
	"github.com/lemmego/searchable/model"
)

// DefaultNestedJoinDepthLimit bounds detectNestedToOneRelationships the way
// spec §6's nestedJoinDepthLimit configuration option does (default 3).
const DefaultNestedJoinDepthLimit = 3

var pluralizeClient = pluralize.NewClient()

// TableNameFor derives the SQL table name for an entity type: an explicit
// model.Define override if the caller registered one, else a default
// derived from the Go struct name, pluralized via go-pluralize the way the
// teacher's go.mod already pulled in that dependency for (previously
// unwired).
func TableNameFor(entity interface{}) string {
	if override, ok := model.TableNameOverride(entity); ok {
		return override
	}
	name := meta.TypeName(entity)
	return pluralizeClient.Plural(toSnake(name))
}

// SingularElementName singularizes a collection field's element type name,
// via jinzhu/inflection, for constructing nested ToOne aliases such as
// "comment_author" from a Comments []*Comment field's Author relation.
func SingularElementName(pluralName string) string {
	return inflection.Singular(pluralName)
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

type analysisCache struct {
	mu          sync.RWMutex
	commonToOne map[string][]string
	nestedToOne map[string][]string
}

var cache = &analysisCache{
	commonToOne: make(map[string][]string),
	nestedToOne: make(map[string][]string),
}

// DetectCommonToOneFields returns the set of direct attribute names on the
// entity whose kind is MANY_TO_ONE or ONE_TO_ONE, per spec §4.6. Results
// are cached per entity type.
func DetectCommonToOneFields(entity interface{}) []string {
	key := meta.TypeName(entity)

	cache.mu.RLock()
	if v, ok := cache.commonToOne[key]; ok {
		cache.mu.RUnlock()
		return v
	}
	cache.mu.RUnlock()

	var out []string
	for name, attr := range meta.Attributes(entity) {
		if attr.Kind.IsToOne() {
			out = append(out, name)
		}
	}
	sortStrings(out)

	cache.mu.Lock()
	cache.commonToOne[key] = out
	cache.mu.Unlock()
	return out
}

// DetectNestedToOneRelationships finds, for every collection attribute c
// with target Tc, the dotted paths "c.x" for each x in
// DetectCommonToOneFields(Tc). Depth is capped at maxDepth segments
// (default DefaultNestedJoinDepthLimit) to bound the search.
func DetectNestedToOneRelationships(entity interface{}, maxDepth int) []string {
	if maxDepth <= 0 {
		maxDepth = DefaultNestedJoinDepthLimit
	}
	key := meta.TypeName(entity)

	cache.mu.RLock()
	if v, ok := cache.nestedToOne[key]; ok {
		cache.mu.RUnlock()
		return v
	}
	cache.mu.RUnlock()

	var out []string
	for name, attr := range meta.Attributes(entity) {
		if !attr.Kind.IsToMany() || attr.Target == nil {
			continue
		}
		elemZero := zeroOf(attr.Target)
		for _, x := range DetectCommonToOneFields(elemZero) {
			path := name + "." + x
			if strings.Count(path, ".")+1 <= maxDepth {
				out = append(out, path)
			}
		}
	}
	sortStrings(out)

	cache.mu.Lock()
	cache.nestedToOne[key] = out
	cache.mu.Unlock()
	return out
}

// IsNestedPathSafeForJoin validates that every segment of path is ToOne and
// that the path does not cycle back to the root entity type, per spec
// §4.6's cycle guard.
func IsNestedPathSafeForJoin(root interface{}, path string) bool {
	rootName := meta.TypeName(root)
	segs := strings.Split(path, ".")

	cur := root
	for _, seg := range segs {
		attrs := meta.Attributes(cur)
		attr, ok := attrs[seg]
		if !ok {
			return false
		}
		if !attr.Kind.IsToOne() {
			return false
		}
		if attr.Target == nil {
			return false
		}
		cur = zeroOf(attr.Target)
		if meta.TypeName(cur) == rootName {
			return false
		}
	}
	return true
}

func zeroOf(t reflect.Type) interface{} {
	return reflect.New(t).Elem().Interface()
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
