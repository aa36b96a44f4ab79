package db

import "testing"

func TestBuilderFactoriesPickDialect(t *testing.T) {
	DM().Add("sqlite-test", NewConnection(&Config{
		ConnName: "sqlite-test",
		Driver:   DialectSQLite,
		Database: "file::memory:?cache=shared",
	}))

	sql, _ := SelectBuilder("sqlite-test").Select("*").From("users").Build()
	if sql == "" {
		t.Fatal("expected a non-empty SELECT statement")
	}
}
