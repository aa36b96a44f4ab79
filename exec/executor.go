package exec

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackskj/carta"

	"github.com/lemmego/searchable/join"
	"github.com/lemmego/searchable/meta"
	"github.com/lemmego/searchable/relation"
	"github.com/lemmego/searchable/search"
)

// Executor groups the collaborators every query of this package needs: a
// Session to run SQL against, the go-sqlbuilder Flavor that determines
// placeholder style, and the tunable Config of spec §6/§4.9.
type Executor[T any] struct {
	Session Session
	Flavor  sqlbuilder.Flavor
	Config  Config
}

// NewExecutor constructs an Executor with cfg defaulted where zero.
func NewExecutor[T any](session Session, flavor sqlbuilder.Flavor, cfg Config) *Executor[T] {
	def := DefaultConfig()
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = def.MaxPageSize
	}
	if cfg.BatchFetchSize <= 0 {
		cfg.BatchFetchSize = def.BatchFetchSize
	}
	if cfg.NestedJoinDepthLimit <= 0 {
		cfg.NestedJoinDepthLimit = def.NestedJoinDepthLimit
	}
	return &Executor[T]{Session: session, Flavor: flavor, Config: cfg}
}

// Page is a findAll-family result: the hydrated entities plus the total
// count across all pages (spec §4.10).
type Page[T any] struct {
	Items []T
	Total int64
}

func rootZero[T any]() T {
	var zero T
	return zero
}

// FindAll implements the Searchable Service Facade's findAll (C11),
// running the Two-Phase Executor's decision function and dispatching to
// either the single-phase or two-phase path, then always running Phase 3
// (count); there is no variant that skips the count.
func FindAll[T any, D any](ctx context.Context, ex *Executor[T], sc *search.SearchCondition[D]) (*Page[T], error) {
	root := rootZero[T]()
	conditionPaths := sc.ConditionPaths()
	page, size := normalizePage(sc.Page, sc.Size, ex.Config.MaxPageSize)
	sort := normalizeSort(root, sc.Sort)

	var items []T
	var err error
	if useTwoPhase(root, conditionPaths, ex.Config.TwoPhaseAlwaysOn) {
		items, err = twoPhaseSelect(ctx, ex, root, sc.Nodes, sort, sc.FetchFields, page, size)
	} else {
		items, err = singlePhaseSelect[T](ctx, ex, root, sc.Nodes, sort, sc.FetchFields, page, size)
	}
	if err != nil {
		return nil, err
	}

	total, err := Count(ctx, ex, sc)
	if err != nil {
		return nil, err
	}

	return &Page[T]{Items: items, Total: total}, nil
}

// FindOne returns the single entity matching sc, erroring if more than one
// row matches (spec §4.10).
func FindOne[T any, D any](ctx context.Context, ex *Executor[T], sc *search.SearchCondition[D]) (*T, error) {
	probe := search.From(sc).Size(2).Page(0).Build()
	p, err := FindAll(ctx, ex, probe)
	if err != nil {
		return nil, err
	}
	switch len(p.Items) {
	case 0:
		return nil, nil
	case 1:
		return &p.Items[0], nil
	default:
		return nil, fmt.Errorf("exec: findOne matched more than one row")
	}
}

// FindFirst returns the first entity by normalized sort order, or nil if
// none match.
func FindFirst[T any, D any](ctx context.Context, ex *Executor[T], sc *search.SearchCondition[D]) (*T, error) {
	probe := search.From(sc).Size(1).Page(0).Build()
	p, err := FindAll(ctx, ex, probe)
	if err != nil {
		return nil, err
	}
	if len(p.Items) == 0 {
		return nil, nil
	}
	return &p.Items[0], nil
}

// Count implements spec §4.10's count: Strategy A joins over the
// condition paths, DISTINCT over the primary key.
func Count[T any, D any](ctx context.Context, ex *Executor[T], sc *search.SearchCondition[D]) (int64, error) {
	root := rootZero[T]()
	sb := sqlbuilder.NewSelectBuilder()
	sb.From(relation.TableNameFor(root) + " AS t0")
	plan := join.NewPlan(root, "t0")
	join.RegularOnlyJoins(sb, plan, root, sc.ConditionPaths())

	if err := applyPredicate(sb, sc.Nodes, plan); err != nil {
		return 0, err
	}

	pk := meta.PrimaryKey(root)
	if len(pk) == 1 {
		col, err := plan.Column(pk[0])
		if err != nil {
			return 0, err
		}
		sb.Select(fmt.Sprintf("COUNT(DISTINCT %s)", col))
		sqlStr, args := sb.BuildWithFlavor(ex.Flavor)
		return scanInt64Raw(ctx, ex.Session, sqlStr, args)
	}

	// Composite key: COUNT(DISTINCT a,b) is not portable, so count the
	// distinct tuples via a derived subquery instead.
	cols := make([]string, len(pk))
	for i, p := range pk {
		col, err := plan.Column(p)
		if err != nil {
			return 0, err
		}
		cols[i] = col
	}
	sb.Select(cols...)
	sb.Distinct()
	inner, args := sb.BuildWithFlavor(ex.Flavor)
	outer := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS distinct_keys", inner)
	return scanInt64Raw(ctx, ex.Session, outer, args)
}

// Exists is count > 0, evaluated with a LIMIT 1 fast path rather than a
// full count (spec §4.10).
func Exists[T any, D any](ctx context.Context, ex *Executor[T], sc *search.SearchCondition[D]) (bool, error) {
	root := rootZero[T]()
	sb := sqlbuilder.NewSelectBuilder()
	sb.From(relation.TableNameFor(root) + " AS t0")
	plan := join.NewPlan(root, "t0")
	join.RegularOnlyJoins(sb, plan, root, sc.ConditionPaths())

	if err := applyPredicate(sb, sc.Nodes, plan); err != nil {
		return false, err
	}

	pk := meta.PrimaryKey(root)
	col, err := plan.Column(pk[0])
	if err != nil {
		return false, err
	}
	sb.Select(col)
	sb.Limit(1)

	sqlStr, args := sb.BuildWithFlavor(ex.Flavor)
	rows, err := ex.Session.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return false, wrapExec("statement execution", err)
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

// DeleteByCondition implements spec §4.10: a bulk delete against the
// predicate, targeting the root entity table only. No joins are applied:
// columns resolve against the root table alone, so a condition on a dotted
// relationship path fails to resolve and the delete returns an error.
func DeleteByCondition[T any, D any](ctx context.Context, ex *Executor[T], sc *search.SearchCondition[D]) (int64, error) {
	root := rootZero[T]()
	db := sqlbuilder.NewDeleteBuilder()
	db.DeleteFrom(relation.TableNameFor(root))

	plan := join.NewPlan(root, relation.TableNameFor(root))
	expr, err := search.BuildPredicateTree(db, sc.Nodes, plan)
	if err != nil {
		return 0, err
	}
	if expr != "" {
		db.Where(expr)
	}

	sqlStr, args := db.BuildWithFlavor(ex.Flavor)
	res, err := ex.Session.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, wrapExec("statement execution", err)
	}
	return res.RowsAffected()
}

// UpdateByCondition implements spec §4.10: patch is an attribute→value map
// applied to every row matching the predicate; unspecified attributes are
// left untouched.
func UpdateByCondition[T any, D any](ctx context.Context, ex *Executor[T], sc *search.SearchCondition[D], patch map[string]interface{}) (int64, error) {
	root := rootZero[T]()
	ub := sqlbuilder.NewUpdateBuilder()
	ub.Update(relation.TableNameFor(root))

	plan := join.NewPlan(root, relation.TableNameFor(root))

	assignments := make([]string, 0, len(patch))
	for field, value := range patch {
		attr, err := meta.Attribute(root, field)
		if err != nil {
			return 0, err
		}
		assignments = append(assignments, ub.Assign(attr.Column, value))
	}
	ub.Set(assignments...)

	expr, err := search.BuildPredicateTree(ub, sc.Nodes, plan)
	if err != nil {
		return 0, err
	}
	if expr != "" {
		ub.Where(expr)
	}

	sqlStr, args := ub.BuildWithFlavor(ex.Flavor)
	res, err := ex.Session.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, wrapExec("statement execution", err)
	}
	return res.RowsAffected()
}

func applyPredicate(sb *sqlbuilder.SelectBuilder, nodes []search.Node, plan *join.Plan) error {
	expr, err := search.BuildPredicateTree(sb, nodes, plan)
	if err != nil {
		return wrapExec("predicate compile", err)
	}
	if expr != "" {
		sb.Where(expr)
	}
	return nil
}

func orderExprs(plan *join.Plan, orders []search.Order) ([]string, error) {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		col, err := plan.Column(o.EntityField)
		if err != nil {
			return nil, wrapExec("order-by compile", err)
		}
		dir := "ASC"
		if o.Direction == search.Desc {
			dir = "DESC"
		}
		out = append(out, col+" "+dir)
	}
	return out, nil
}

func scanInt64Raw(ctx context.Context, session Session, sqlStr string, args []interface{}) (int64, error) {
	rows, err := session.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, wrapExec("statement execution", err)
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

func singlePhaseSelect[T any](ctx context.Context, ex *Executor[T], root T, nodes []search.Node, sort []search.Order, fetchFields []string, page, size int) ([]T, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.From(relation.TableNameFor(root) + " AS t0")
	plan := join.NewPlan(root, "t0")

	conditionPaths := (&search.SearchCondition[struct{}]{Nodes: nodes}).ConditionPaths()
	allPaths := dedupe(append(append([]string{}, conditionPaths...), fetchFields...))
	join.ApplyJoinsStrategy(sb, plan, root, allPaths, false)

	if err := applyPredicate(sb, nodes, plan); err != nil {
		return nil, err
	}

	cols, err := projectionColumns(root, plan, dedupe(fetchFields))
	if err != nil {
		return nil, err
	}
	sb.Select(selectList(cols)...)

	orders, err := orderExprs(plan, sort)
	if err != nil {
		return nil, err
	}
	if len(orders) > 0 {
		sb.OrderBy(orders...)
	}
	sb.Limit(size)
	sb.Offset(page * size)

	sqlStr, args := sb.BuildWithFlavor(ex.Flavor)
	rows, err := ex.Session.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, wrapExec("statement execution", err)
	}
	defer rows.Close()

	var out []T
	if err := carta.Map(rows, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// twoPhaseSelect implements Phase 1 (ID projection) and Phase 2
// (hydration) of spec §4.8.
func twoPhaseSelect[T any](ctx context.Context, ex *Executor[T], root T, nodes []search.Node, sort []search.Order, fetchFields []string, page, size int) ([]T, error) {
	keys, keyCols, err := phase1Keys(ctx, ex, root, nodes, sort, page, size)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []T{}, nil
	}
	items, primaryToMany, err := phase2Hydrate(ctx, ex, root, fetchFields, (&search.SearchCondition[struct{}]{Nodes: nodes}).ConditionPaths(), sort, keyCols, keys)
	if err != nil {
		return nil, err
	}
	if err := loadDeferredToMany(ctx, ex, root, items, fetchFields, primaryToMany); err != nil {
		return nil, err
	}
	return items, nil
}

func phase1Keys[T any](ctx context.Context, ex *Executor[T], root T, nodes []search.Node, sort []search.Order, page, size int) ([][]interface{}, []string, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.From(relation.TableNameFor(root) + " AS t0")
	plan := join.NewPlan(root, "t0")

	conditionPaths := (&search.SearchCondition[struct{}]{Nodes: nodes}).ConditionPaths()
	join.RegularOnlyJoins(sb, plan, root, conditionPaths)

	if err := applyPredicate(sb, nodes, plan); err != nil {
		return nil, nil, err
	}

	pk := meta.PrimaryKey(root)
	projection := append([]string{}, pk...)
	if isNonPrimaryKeySort(root, sort) {
		for _, o := range sort {
			if !contains(projection, o.EntityField) {
				projection = append(projection, o.EntityField)
			}
		}
	}

	cols := make([]string, len(projection))
	for i, p := range projection {
		c, err := plan.Column(p)
		if err != nil {
			return nil, nil, err
		}
		cols[i] = c
	}
	sb.Select(cols...)
	sb.Distinct()

	orders, err := orderExprs(plan, sort)
	if err != nil {
		return nil, nil, err
	}
	if len(orders) > 0 {
		sb.OrderBy(orders...)
	}
	sb.Limit(size)
	sb.Offset(page * size)

	sqlStr, args := sb.BuildWithFlavor(ex.Flavor)
	rows, err := ex.Session.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, nil, wrapExec("statement execution", err)
	}
	defer rows.Close()

	var keys [][]interface{}
	for rows.Next() {
		dest := make([]interface{}, len(cols))
		scanTargets := make([]interface{}, len(cols))
		for i := range dest {
			scanTargets[i] = &dest[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, nil, err
		}
		keys = append(keys, dest[:len(pk)])
	}
	return keys, pk, rows.Err()
}

// phase2Hydrate also returns the primary ToMany path Strategy C chose to
// fetch-join and project (or "" if none was fetched), so the caller knows
// which ToMany fetchFields, if any, still need BatchLoader hydration.
func phase2Hydrate[T any](ctx context.Context, ex *Executor[T], root T, fetchFields, conditionPaths []string, sort []search.Order, pkCols []string, keys [][]interface{}) ([]T, string, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.From(relation.TableNameFor(root) + " AS t0")
	plan := join.NewPlan(root, "t0")

	allPaths := dedupe(append(append(append([]string{}, fetchFields...), conditionPaths...), relation.DetectCommonToOneFields(root)...))
	primaryToMany, _ := join.SmartFetchStrategy(sb, plan, root, allPaths, conditionPaths)

	pkQualified := make([]string, len(pkCols))
	for i, p := range pkCols {
		c, err := plan.Column(p)
		if err != nil {
			return nil, "", err
		}
		pkQualified[i] = c
	}
	predicate := keyTupleInExpr(sb, pkQualified, keys)
	sb.Where(predicate)

	fetchedPaths := fetchJoinedPathsWithPrimary(plan, fetchFields, conditionPaths, primaryToMany)
	cols, err := projectionColumns(root, plan, fetchedPaths)
	if err != nil {
		return nil, "", err
	}
	sb.Select(selectList(cols)...)

	orders, err := orderExprs(plan, sort)
	if err != nil {
		return nil, "", err
	}
	if len(orders) > 0 {
		sb.OrderBy(orders...)
	}

	sqlStr, args := sb.BuildWithFlavor(ex.Flavor)
	rows, err := ex.Session.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, "", wrapExec("statement execution", err)
	}
	defer rows.Close()

	var hydrated []T
	if err := carta.Map(rows, &hydrated); err != nil {
		return nil, "", err
	}

	return reorderByKeys(root, hydrated, pkCols, keys), primaryToMany, nil
}

// loadDeferredToMany hydrates every ToMany fetchFields path other than the
// one Phase 2 already fetch-joined and projected (spec §4.8's "non-primary
// ToMany paths are hydrated by batch loading"). Owner primary keys are
// batched to Config.BatchFetchSize per BatchLoader call. A Session that
// doesn't implement BatchLoader is left alone: those collections stay
// unpopulated, matching BatchLoader's own documented degrade, rather than
// failing the query outright.
func loadDeferredToMany[T any](ctx context.Context, ex *Executor[T], root T, items []T, fetchFields []string, primaryToMany string) error {
	loader, ok := ex.Session.(BatchLoader)
	if !ok {
		return nil
	}

	pk := meta.PrimaryKey(root)
	if len(pk) != 1 {
		// Batch loading keys off a single owner PK column; composite-key
		// roots degrade the same way an unimplemented BatchLoader does.
		return nil
	}
	ownerPKs := ownerPKValues(items, pk[0])
	if len(ownerPKs) == 0 {
		return nil
	}

	batchSize := ex.Config.BatchFetchSize
	if batchSize <= 0 {
		batchSize = DefaultConfig().BatchFetchSize
	}

	for _, path := range dedupe(fetchFields) {
		if path == primaryToMany || !meta.IsToManyPath(root, path) {
			continue
		}
		for start := 0; start < len(ownerPKs); start += batchSize {
			end := start + batchSize
			if end > len(ownerPKs) {
				end = len(ownerPKs)
			}
			if err := loader.BatchLoad(ctx, ownerPKs[start:end], path, batchSize); err != nil {
				return wrapExec("batch load", err)
			}
		}
	}
	return nil
}

func ownerPKValues[T any](items []T, pkCol string) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		v := reflect.ValueOf(item)
		for v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		f := v.FieldByName(pkCol)
		out = append(out, f.Interface())
	}
	return out
}

// reorderByKeys restores Phase 1's ORDER BY over the Phase 2 result set,
// since `pk IN (...)` does not preserve order (spec §5's ordering
// guarantee). Lookups are by a composite key built via reflection, since
// the primary key attribute is only known by name at runtime.
func reorderByKeys[T any](root T, hydrated []T, pkCols []string, keys [][]interface{}) []T {
	index := make(map[string]T, len(hydrated))
	for _, item := range hydrated {
		index[keyOf(item, pkCols)] = item
	}

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		key := keyString(k)
		if v, ok := index[key]; ok {
			out = append(out, v)
		}
	}
	return out
}

func keyOf(item interface{}, pkCols []string) string {
	v := reflect.ValueOf(item)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	parts := make([]string, len(pkCols))
	for i, name := range pkCols {
		f := v.FieldByName(name)
		parts[i] = fmt.Sprint(f.Interface())
	}
	return strings.Join(parts, "\x1f")
}

func keyString(key []interface{}) string {
	parts := make([]string, len(key))
	for i, v := range key {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "\x1f")
}

// keyTupleInExpr builds `pk(e) ∈ keys` as an OR of per-row AND-equality
// tuples, binding every key component as a parameter via b.Equal. This is
// always correct regardless of dialect row-value IN support, unlike the
// columnwise-conjoined-IN-lists alternative spec §4.8 also permits (which
// only matches the intended tuple set when every component value is
// unique across rows).
func keyTupleInExpr(b search.Builder, pkQualified []string, keys [][]interface{}) string {
	rowExprs := make([]string, len(keys))
	for i, key := range keys {
		eqs := make([]string, len(pkQualified))
		for j, col := range pkQualified {
			eqs[j] = b.Equal(col, key[j])
		}
		rowExprs[i] = b.And(eqs...)
	}
	return b.Or(rowExprs...)
}

func fetchJoinedPathsWithPrimary(plan *join.Plan, fetchFields, conditionPaths []string, primaryToMany string) []string {
	out := dedupe(append([]string{}, fetchFields...))
	if primaryToMany != "" && !contains(out, primaryToMany) {
		out = append(out, primaryToMany)
	}
	return out
}

func dedupe(paths []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
