package search

// Operator is the closed set of SearchOperator values from spec §3.
type Operator string

const (
	Equals               Operator = "eq"
	NotEquals            Operator = "ne"
	GreaterThan          Operator = "gt"
	GreaterThanOrEqualTo Operator = "gte"
	LessThan             Operator = "lt"
	LessThanOrEqualTo    Operator = "lte"
	Contains             Operator = "contains"
	NotContains          Operator = "notContains"
	StartsWith           Operator = "startsWith"
	NotStartsWith        Operator = "notStartsWith"
	EndsWith             Operator = "endsWith"
	NotEndsWith          Operator = "notEndsWith"
	IsNull               Operator = "isNull"
	IsNotNull            Operator = "isNotNull"
	In                   Operator = "in"
	NotIn                Operator = "notIn"
	Between              Operator = "between"
	NotBetween           Operator = "notBetween"
)

// AllOperators lists every recognized operator, in the camelCase spelling
// used by the query-string surface (spec §6).
var AllOperators = []Operator{
	Equals, NotEquals,
	GreaterThan, GreaterThanOrEqualTo, LessThan, LessThanOrEqualTo,
	Contains, NotContains, StartsWith, NotStartsWith, EndsWith, NotEndsWith,
	IsNull, IsNotNull, In, NotIn, Between, NotBetween,
}

func (op Operator) valid() bool {
	for _, o := range AllOperators {
		if o == op {
			return true
		}
	}
	return false
}

// RequiresNoValue reports operators whose shape forbids any value (I3).
func (op Operator) RequiresNoValue() bool {
	return op == IsNull || op == IsNotNull
}

// RequiresValueList reports operators whose shape requires a list of
// values (I3); an empty list is accepted and compiles to a constant.
func (op Operator) RequiresValueList() bool {
	return op == In || op == NotIn
}

// RequiresRange reports operators whose shape requires exactly two ordered
// values (I3).
func (op Operator) RequiresRange() bool {
	return op == Between || op == NotBetween
}

// IsStringPattern reports the operators compared case-insensitively
// (CONTAINS/STARTS_WITH/ENDS_WITH and their negations), per spec §4.5.
func (op Operator) IsStringPattern() bool {
	switch op {
	case Contains, NotContains, StartsWith, NotStartsWith, EndsWith, NotEndsWith:
		return true
	default:
		return false
	}
}
