// Query-string parsing for the HTTP-style surface described in spec §6.
// Grounded on rancher-steve's listprocessor.ParseQuery (other_examples
// pack): a flat net/url.Values is walked once into a typed options struct,
// except here the destination is this module's own SearchCondition rather
// than a Kubernetes list-options type.
package search

import (
	"net/url"
	"strconv"
	"strings"
)

// camelOperators maps the camelCase operator spelling used on the wire
// (spec §6: "op is the camelCase operator name") to Operator constants.
var camelOperators = map[string]Operator{
	"eq": Equals, "equals": Equals,
	"ne": NotEquals, "notEquals": NotEquals,
	"gt": GreaterThan, "greaterThan": GreaterThan,
	"gte": GreaterThanOrEqualTo, "greaterThanOrEqualTo": GreaterThanOrEqualTo,
	"lt": LessThan, "lessThan": LessThan,
	"lte": LessThanOrEqualTo, "lessThanOrEqualTo": LessThanOrEqualTo,
	"contains":      Contains,
	"notContains":   NotContains,
	"startsWith":    StartsWith,
	"notStartsWith": NotStartsWith,
	"endsWith":      EndsWith,
	"notEndsWith":   NotEndsWith,
	"isNull":        IsNull,
	"isNotNull":     IsNotNull,
	"in":            In,
	"notIn":         NotIn,
	"between":       Between,
	"notBetween":    NotBetween,
}

// ParseQueryParams parses the HTTP-style surface into an unvalidated
// SearchCondition[D]: `field.op=value`, `field.in=v1,v2`, `field.between=v1,v2`,
// `sort=field.asc,field2.desc`, `page=n`, `size=n`, `fetch=path1,path2`.
// Call Validate on the resulting SearchCondition before executing it — this
// function performs no DTO-gating (C2) or type conversion (C5) itself.
func ParseQueryParams[D any](values url.Values) *SearchCondition[D] {
	var conditions []Node

	for key, raws := range values {
		switch key {
		case "sort", "page", "size", "fetch":
			continue
		}

		dtoField, opName, ok := splitFieldOp(key)
		if !ok {
			continue
		}
		op, ok := camelOperators[opName]
		if !ok {
			continue
		}

		raw := ""
		if len(raws) > 0 {
			raw = raws[0]
		}

		switch {
		case op.RequiresNoValue():
			conditions = append(conditions, C(dtoField, op, nil))
		case op.RequiresValueList():
			parts := splitCSV(raw)
			vals := make([]interface{}, len(parts))
			for i, p := range parts {
				vals[i] = p
			}
			conditions = append(conditions, Values(dtoField, op, vals))
		case op.RequiresRange():
			parts := splitCSV(raw)
			lower, upper := "", ""
			if len(parts) > 0 {
				lower = parts[0]
			}
			if len(parts) > 1 {
				upper = parts[1]
			}
			conditions = append(conditions, Range(dtoField, op, lower, upper))
		default:
			conditions = append(conditions, C(dtoField, op, raw))
		}
	}

	b := NewSearchCondition[D]().Where(conditions...)

	if sortRaw := values.Get("sort"); sortRaw != "" {
		for _, term := range splitCSV(sortRaw) {
			field, dirName, ok := splitFieldOp(term)
			if !ok {
				continue
			}
			dir := Asc
			if strings.EqualFold(dirName, "desc") {
				dir = Desc
			}
			b.Sort(SortBy(field, dir))
		}
	}

	if pageRaw := values.Get("page"); pageRaw != "" {
		if n, err := strconv.Atoi(pageRaw); err == nil {
			b.Page(n)
		}
	}
	if sizeRaw := values.Get("size"); sizeRaw != "" {
		if n, err := strconv.Atoi(sizeRaw); err == nil {
			b.Size(n)
		}
	}
	if fetchRaw := values.Get("fetch"); fetchRaw != "" {
		b.FetchFields(splitCSV(fetchRaw)...)
	}

	return b.Build()
}

// splitFieldOp splits "field.op" on the last dot, since a dotted entity
// path (e.g. "author.name.eq") legitimately contains earlier dots.
func splitFieldOp(key string) (field, op string, ok bool) {
	i := strings.LastIndex(key, ".")
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
