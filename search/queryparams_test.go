package search

import (
	"net/url"
	"testing"
)

func TestParseQueryParamsBasicEquals(t *testing.T) {
	values := url.Values{"name.eq": {"ann"}}
	sc := ParseQueryParams[customerDTO](values)

	if len(sc.Nodes) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(sc.Nodes))
	}
	cond := sc.Nodes[0].(*Condition)
	if cond.DTOField != "name" || cond.Op != Equals || cond.Value != "ann" {
		t.Fatalf("got %+v", cond)
	}
}

func TestParseQueryParamsDottedFieldSplitsOnLastDot(t *testing.T) {
	values := url.Values{"author.name.contains": {"ann"}}
	sc := ParseQueryParams[customerDTO](values)

	cond := sc.Nodes[0].(*Condition)
	if cond.DTOField != "author.name" || cond.Op != Contains {
		t.Fatalf("got %+v", cond)
	}
}

func TestParseQueryParamsInList(t *testing.T) {
	values := url.Values{"age.in": {"1,2,3"}}
	sc := ParseQueryParams[customerDTO](values)

	cond := sc.Nodes[0].(*Condition)
	vals, ok := cond.Value.([]interface{})
	if !ok || len(vals) != 3 {
		t.Fatalf("got %+v", cond.Value)
	}
}

func TestParseQueryParamsBetweenRange(t *testing.T) {
	values := url.Values{"age.between": {"10,20"}}
	sc := ParseQueryParams[customerDTO](values)

	cond := sc.Nodes[0].(*Condition)
	if cond.Value != "10" || cond.Value2 != "20" {
		t.Fatalf("got %+v", cond)
	}
}

func TestParseQueryParamsIsNullRequiresNoValue(t *testing.T) {
	values := url.Values{"name.isNull": {""}}
	sc := ParseQueryParams[customerDTO](values)

	cond := sc.Nodes[0].(*Condition)
	if cond.Op != IsNull || cond.Value != nil {
		t.Fatalf("got %+v", cond)
	}
}

func TestParseQueryParamsSortPageSizeFetch(t *testing.T) {
	values := url.Values{
		"sort": {"name.asc,age.desc"},
		"page": {"2"},
		"size": {"50"},
		"fetch": {"author,comments"},
	}
	sc := ParseQueryParams[customerDTO](values)

	if len(sc.Sort) != 2 || sc.Sort[0].Direction != Asc || sc.Sort[1].Direction != Desc {
		t.Fatalf("got sort %+v", sc.Sort)
	}
	if sc.Page != 2 || sc.Size != 50 {
		t.Fatalf("got page=%d size=%d", sc.Page, sc.Size)
	}
	if len(sc.FetchFields) != 2 {
		t.Fatalf("got fetch %v", sc.FetchFields)
	}
}

func TestParseQueryParamsIgnoresUnknownOperator(t *testing.T) {
	values := url.Values{"name.bogus": {"ann"}}
	sc := ParseQueryParams[customerDTO](values)
	if len(sc.Nodes) != 0 {
		t.Fatalf("expected unrecognized operator to be skipped, got %+v", sc.Nodes)
	}
}
