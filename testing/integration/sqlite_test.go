package integration

import (
	"context"
	"testing"

	"github.com/zoobzio/relq"
	sqlitedialect "github.com/zoobzio/relq/pkg/sqlite"
)

func TestSQLite_EndToEnd(t *testing.T) {
	ctx := context.Background()

	db, err := sqlitedialect.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			age INTEGER,
			active INTEGER DEFAULT 1
		)
	`); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	users := usersTable()
	d := sqlitedialect.New()

	ins := relq.InsertBatched(users, []string{"id", "username", "age", "active"},
		[]any{int64(1), "alice", int64(30), true},
		[]any{int64(2), "bob", int64(25), false},
		[]any{int64(3), "carol", int64(35), true},
	)
	compiled, err := ins.Compile(d)
	if err != nil {
		t.Fatalf("Compile insert: %v", err)
	}
	if _, err := db.ExecContext(ctx, compiled.SQL, compiled.Args...); err != nil {
		t.Fatalf("Insert failed: %v\nSQL: %s", err, compiled.SQL)
	}

	q := relq.From(users).
		Filter(func(u relq.Shape) relq.Expr {
			return relq.ColOf(u, "active").Eq(relq.Lit(true))
		}).
		SortBy(func(u relq.Shape) relq.Expr {
			return relq.ColOf(u, "age")
		}).Desc().
		Take(1)

	compiled, err = q.Compile(d)
	if err != nil {
		t.Fatalf("Compile query: %v", err)
	}

	results, err := sqlitedialect.Query(ctx, db, compiled)
	if err != nil {
		t.Fatalf("Query failed: %v\nSQL: %s", err, compiled.SQL)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(results))
	}
	row, ok := results[0].(map[string]any)
	if !ok {
		t.Fatalf("Expected record result, got %T", results[0])
	}
	if row["username"] != "carol" {
		t.Errorf("Expected carol, got %v", row["username"])
	}

	del := relq.Delete(users, users.C("active").Eq(relq.Lit(false)))
	compiled, err = del.Compile(d)
	if err != nil {
		t.Fatalf("Compile delete: %v", err)
	}
	affected, err := sqlitedialect.Exec(ctx, db, compiled)
	if err != nil {
		t.Fatalf("Delete failed: %v\nSQL: %s", err, compiled.SQL)
	}
	if affected != 1 {
		t.Errorf("Expected 1 row deleted, got %d", affected)
	}
}
