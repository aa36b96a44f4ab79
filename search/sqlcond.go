package search

import "github.com/huandu/go-sqlbuilder"

// Builder unifies the three go-sqlbuilder statement builders the Predicate
// Builder (C6) needs to target: a SELECT for findAll/count/exists, an
// UPDATE for updateByCondition, and a DELETE for deleteByCondition. All
// three embed sqlbuilder.Cond and so already satisfy this method set —
// adapted from the teacher's condition.go, which assumed these exact
// method names but left the Builder/BuilderSelect/BuilderUpdate/
// BuilderDelete types undefined; here they are the real sqlbuilder types.
type Builder interface {
	Equal(field string, value interface{}) string
	NotEqual(field string, value interface{}) string
	GreaterThan(field string, value interface{}) string
	GreaterEqualThan(field string, value interface{}) string
	LessThan(field string, value interface{}) string
	LessEqualThan(field string, value interface{}) string
	In(field string, values ...interface{}) string
	NotIn(field string, values ...interface{}) string
	Like(field string, value interface{}) string
	ILike(field string, value interface{}) string
	NotLike(field string, value interface{}) string
	NotILike(field string, value interface{}) string
	IsNull(field string) string
	IsNotNull(field string) string
	Between(field string, lower, upper interface{}) string
	NotBetween(field string, lower, upper interface{}) string
	Or(orExpr ...string) string
	And(andExpr ...string) string
	Not(notExpr string) string
	Var(value interface{}) string
}

var (
	_ Builder = (*sqlbuilder.SelectBuilder)(nil)
	_ Builder = (*sqlbuilder.UpdateBuilder)(nil)
	_ Builder = (*sqlbuilder.DeleteBuilder)(nil)
)

// ConditionFunc proxies a single operator call to whichever concrete
// Builder kind is active for the current statement — the same dispatch
// shape as the teacher's condition.go, generalized from a 3-way type
// switch on made-up types to one interface method set.
type ConditionFunc func(b Builder) string

// Eq, NEq, Gt, Gte, Lt, Lte wrap the corresponding Builder methods as
// ConditionFuncs so callers can compose expressions before knowing which
// statement kind they'll run against.
func Eq(field string, value interface{}) ConditionFunc {
	return func(b Builder) string { return b.Equal(field, value) }
}

func NEq(field string, value interface{}) ConditionFunc {
	return func(b Builder) string { return b.NotEqual(field, value) }
}

func Gt(field string, value interface{}) ConditionFunc {
	return func(b Builder) string { return b.GreaterThan(field, value) }
}

func Gte(field string, value interface{}) ConditionFunc {
	return func(b Builder) string { return b.GreaterEqualThan(field, value) }
}

func Lt(field string, value interface{}) ConditionFunc {
	return func(b Builder) string { return b.LessThan(field, value) }
}

func Lte(field string, value interface{}) ConditionFunc {
	return func(b Builder) string { return b.LessEqualThan(field, value) }
}

func InList(field string, values ...interface{}) ConditionFunc {
	return func(b Builder) string { return b.In(field, values...) }
}

func NotInList(field string, values ...interface{}) ConditionFunc {
	return func(b Builder) string { return b.NotIn(field, values...) }
}

func BetweenRange(field string, lower, upper interface{}) ConditionFunc {
	return func(b Builder) string { return b.Between(field, lower, upper) }
}

func NotBetweenRange(field string, lower, upper interface{}) ConditionFunc {
	return func(b Builder) string { return b.NotBetween(field, lower, upper) }
}

func IsNullCond(field string) ConditionFunc {
	return func(b Builder) string { return b.IsNull(field) }
}

func IsNotNullCond(field string) ConditionFunc {
	return func(b Builder) string { return b.IsNotNull(field) }
}
