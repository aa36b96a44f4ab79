// Command searchdemo drives the full pipeline end to end against an
// in-memory SQLite database: Metamodel Adapter, DTO Schema Validator,
// Predicate Builder, Join Strategy Manager and Two-Phase Executor, fronted
// by the Searchable Service Facade. It then repeats the same query through
// GormRepository and BunRepository, each against its own in-memory database,
// to exercise the ORM adapters' Session() boundary end to end.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"

	gormlib "gorm.io/gorm"
	gormsqlite "gorm.io/driver/sqlite"

	bunlib "github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/lemmego/searchable/db"
	"github.com/lemmego/searchable/exec"
	"github.com/lemmego/searchable/repo"
	"github.com/lemmego/searchable/search"

	bunpkg "github.com/lemmego/searchable/bun"
	gormpkg "github.com/lemmego/searchable/gorm"
)

// Author and Post are the demo's entity pair: one ManyToOne relationship
// (Post.Author), enough to exercise the Join Strategy Manager's ToOne
// fetch-join path without the added ceremony of a ToMany fixture.
type Author struct {
	ID   int64  `db:"id,pk"`
	Name string `db:"name"`
}

type Post struct {
	ID        int64   `db:"id,pk"`
	Title     string  `db:"title"`
	ViewCount int     `db:"view_count"`
	Author    *Author `db:"author" rel:"m2o"`
}

// PostQuery is the DTO the HTTP-style surface and the typestate builder
// both validate against.
type PostQuery struct {
	Title      string `search:"Title,ops=eq|contains,sort"`
	ViewCount  int    `search:"ViewCount,ops=gt|gte|lt|lte,sort"`
	AuthorName string `search:"Author.Name,ops=eq|contains"`
}

func main() {
	conn := db.NewConnection(&db.Config{
		ConnName: "default",
		Driver:   db.DialectSQLite,
		Database: ":memory:",
		Params:   "cache=shared",
	})
	if _, err := conn.Open(); err != nil {
		log.Fatalf("open: %v", err)
	}
	defer conn.Close()
	// Shared-cache in-memory SQLite still hands out a distinct empty
	// database per connection unless the pool is pinned to one; the
	// Two-Phase Executor opens two statements per findAll (Phase 1, then
	// Phase 2 or Phase 3), so this matters here in a way it wouldn't
	// against a real server-backed database.
	conn.DB.SetMaxOpenConns(1)
	db.DM().Add("default", conn)

	ctx := context.Background()
	if err := seed(ctx, conn); err != nil {
		log.Fatalf("seed: %v", err)
	}

	ex := exec.NewExecutor[Post](conn.DB, db.GetFlavorForDialect(db.DialectSQLite), exec.DefaultConfig())
	sr := repo.NewSearchableRepository[Post, int64](ex)

	// Typestate builder: posts viewed more than 10 times, newest first.
	sc := search.NewSearchCondition[PostQuery]().
		Where(search.C("ViewCount", search.GreaterThan, 10)).
		Sort(search.Order{DTOField: "ViewCount", Direction: search.Desc}).
		FetchFields("Author").
		Build()

	schema := search.BuildSchema[PostQuery](Post{})
	if err := search.Validate(sc, schema, search.NewValueParser()); err != nil {
		log.Fatalf("validate: %v", err)
	}
	fmt.Println("compiled condition:")
	fmt.Println(search.Dump(sc))

	page, err := repo.FindAll[Post, int64, PostQuery](ctx, sr, sc)
	if err != nil {
		log.Fatalf("findAll: %v", err)
	}
	fmt.Printf("findAll: %d of %d total\n", len(page.Items), page.Total)
	for _, p := range page.Items {
		author := "<none>"
		if p.Author != nil {
			author = p.Author.Name
		}
		fmt.Printf("  #%d %-20s views=%-4d author=%s\n", p.ID, p.Title, p.ViewCount, author)
	}

	dtoPage, err := repo.FindAllDTO[Post, int64, PostQuery](ctx, sr, sc)
	if err != nil {
		log.Fatalf("findAllDTO: %v", err)
	}
	fmt.Printf("findAllDTO projected %d rows (title=%q)\n", len(dtoPage.Items), dtoPage.Items[0].Title)

	// The same query re-expressed through the HTTP-style query-string
	// surface (spec's ParseQueryParams), to show both entry points compile
	// to the same predicate tree shape.
	qs, _ := url.ParseQuery("ViewCount.gt=10&sort=ViewCount.desc")
	sc2 := search.ParseQueryParams[PostQuery](qs)
	if err := search.Validate(sc2, schema, search.NewValueParser()); err != nil {
		log.Fatalf("validate query params: %v", err)
	}
	count, err := repo.Count[Post, int64, PostQuery](ctx, sr, sc2)
	if err != nil {
		log.Fatalf("count: %v", err)
	}
	fmt.Printf("count via query-string filter: %d\n", count)

	// GormRepository and BunRepository exist to front the ambient CRUD the
	// Searchable Service Facade doesn't cover (Create/Update/Delete/
	// Transaction); their Session() method is the adapter boundary that
	// lets the same compiled query run over whichever pool the ORM of
	// choice already holds open. Each gets its own in-memory database,
	// seeded and queried independently of the sqlx demo above.
	if err := runGormDemo(ctx); err != nil {
		log.Fatalf("gorm demo: %v", err)
	}
	if err := runBunDemo(ctx); err != nil {
		log.Fatalf("bun demo: %v", err)
	}
}

func runGormDemo(ctx context.Context) error {
	gdb, err := gormlib.Open(gormsqlite.Open("file:gormdemo?mode=memory&cache=shared"), &gormlib.Config{})
	if err != nil {
		return fmt.Errorf("gorm open: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("gorm underlying *sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := seedSQL(ctx, func(stmt string) error { return gdb.Exec(stmt).Error }); err != nil {
		return fmt.Errorf("gorm seed: %w", err)
	}

	gormRepo := gormpkg.NewGormRepo[Post, int64](gdb, "id")
	sess, err := gormRepo.Session()
	if err != nil {
		return fmt.Errorf("gorm session: %w", err)
	}

	ex := exec.NewExecutor[Post](sess, db.GetFlavorForDialect(db.DialectSQLite), exec.DefaultConfig())
	sr := repo.NewSearchableRepository[Post, int64](ex)
	sc := search.NewSearchCondition[PostQuery]().
		Where(search.C("ViewCount", search.GreaterThan, 0)).
		Build()

	page, err := repo.FindAll[Post, int64, PostQuery](ctx, sr, sc)
	if err != nil {
		return fmt.Errorf("gorm findAll: %w", err)
	}
	fmt.Printf("gorm adapter: GormRepository.Session() wired into the executor, found %d posts\n", len(page.Items))
	return nil
}

func runBunDemo(ctx context.Context) error {
	sqlDB, err := sql.Open("sqlite3", "file:bundemo?mode=memory&cache=shared")
	if err != nil {
		return fmt.Errorf("bun sql.Open: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	bdb := bunlib.NewDB(sqlDB, sqlitedialect.New())

	if err := seedSQL(ctx, func(stmt string) error {
		_, err := bdb.ExecContext(ctx, stmt)
		return err
	}); err != nil {
		return fmt.Errorf("bun seed: %w", err)
	}

	bunRepo := bunpkg.NewBunRepository[Post, int64](bdb)
	sess := bunRepo.Session()

	ex := exec.NewExecutor[Post](sess, db.GetFlavorForDialect(db.DialectSQLite), exec.DefaultConfig())
	sr := repo.NewSearchableRepository[Post, int64](ex)
	sc := search.NewSearchCondition[PostQuery]().
		Where(search.C("ViewCount", search.GreaterThan, 0)).
		Build()

	page, err := repo.FindAll[Post, int64, PostQuery](ctx, sr, sc)
	if err != nil {
		return fmt.Errorf("bun findAll: %w", err)
	}
	fmt.Printf("bun adapter: BunRepository.Session() wired into the executor, found %d posts\n", len(page.Items))
	return nil
}

func seed(ctx context.Context, conn *db.Connection) error {
	return seedSQL(ctx, func(stmt string) error {
		_, err := conn.DB.ExecContext(ctx, stmt)
		return err
	})
}

// seedSQL runs the demo's fixed author/post DDL+DML through whichever exec
// func the caller's driver needs (sqlx, gorm, or bun each shape statement
// execution differently), so the three adapters seed identical data.
func seedSQL(_ context.Context, run func(stmt string) error) error {
	stmts := []string{
		`CREATE TABLE authors (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE posts (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			view_count INTEGER NOT NULL,
			author_id INTEGER NOT NULL REFERENCES authors(id)
		)`,
		`INSERT INTO authors (id, name) VALUES (1, 'Ada'), (2, 'Grace')`,
		`INSERT INTO posts (id, title, view_count, author_id) VALUES
			(1, 'Intro to Query Compilers', 42, 1),
			(2, 'Cursor Stable Pagination', 7, 1),
			(3, 'Two-Phase Hydration', 103, 2)`,
	}
	for _, stmt := range stmts {
		if err := run(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}
