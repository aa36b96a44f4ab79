// Package exec is the Two-Phase Executor (C9) and Sort & Pagination
// Normalizer (C10): it is the only package that actually issues queries,
// composing search's predicate compiler and join's Join Strategy Manager
// against a Session.
package exec

import (
	"context"
	"database/sql"
)

// Session is this module's rendering of spec §6's "ORM adapter interface
// (required from the external collaborator)". The spec's Session/Query
// pair is phrased in JPA terms (createQuery(spec) → Query, with Query
// itself exposing selection/joins/predicates/ordering/limit/offset as
// builder calls); this module's collaborator is SQL composed directly with
// go-sqlbuilder, so the idiomatic Go analogue collapses Session down to
// exactly the method set jmoiron/sqlx's *sqlx.DB and *sqlx.Tx already
// implement. "Query" is not a separate type here — it is the (sql, args)
// pair search/join already produce; Session only knows how to run it.
type Session interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// BatchLoader is the optional batch-load hint of spec §4.8: after Phase 2,
// traversing a non-fetched ToMany relationship should issue one
// `WHERE owner_pk IN (...)` per batchSize owners rather than one per
// owner. Adapters that cannot offer this (e.g. a bare *sqlx.DB) may leave
// it unimplemented; the executor then leaves those collections unpopulated
// rather than failing the query outright.
type BatchLoader interface {
	BatchLoad(ctx context.Context, ownerPKs []interface{}, relation string, batchSize int) error
}
