package db

import "testing"

func TestAddConnection(t *testing.T) {
	DM().Add("default", NewConnection(&Config{
		ConnName: "default",
		Driver:   DialectSQLite,
		Database: "file::memory:?cache=shared",
	}))

	if _, found := DM().Get("default"); !found {
		t.Fatal("expected default connection to be registered")
	}
}
