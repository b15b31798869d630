package integration

import (
	"context"
	"testing"

	"github.com/zoobzio/relq"
	mssqldialect "github.com/zoobzio/relq/pkg/mssql"
)

func setupMSSQLSchema(ctx context.Context, t *testing.T, mc *MSSQLContainer) {
	t.Helper()

	stmts := []string{
		`IF OBJECT_ID('users', 'U') IS NOT NULL DROP TABLE users`,
		`CREATE TABLE users (
			id BIGINT PRIMARY KEY,
			username NVARCHAR(255) NOT NULL,
			age BIGINT,
			active BIT DEFAULT 1
		)`,
	}
	for _, s := range stmts {
		if _, err := mc.db.ExecContext(ctx, s); err != nil {
			t.Fatalf("Failed to create schema: %v\nSQL: %s", err, s)
		}
	}
}

func TestMSSQL_OffsetFetch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	mc := getMSSQLContainer(t)
	setupMSSQLSchema(ctx, t, mc)

	users := usersTable()
	d := mssqldialect.New()

	ins := relq.InsertBatched(users, []string{"id", "username", "age", "active"},
		[]any{int64(1), "alice", int64(30), true},
		[]any{int64(2), "bob", int64(25), false},
		[]any{int64(3), "carol", int64(35), true},
	)
	compiled, err := ins.Compile(d)
	if err != nil {
		t.Fatalf("Compile insert: %v", err)
	}
	if _, err := mc.db.ExecContext(ctx, compiled.SQL, compiled.Args...); err != nil {
		t.Fatalf("Insert failed: %v\nSQL: %s", err, compiled.SQL)
	}

	q := relq.From(users).
		SortBy(func(u relq.Shape) relq.Expr {
			return relq.ColOf(u, "age")
		}).
		Drop(1)

	compiled, err = q.Compile(d)
	if err != nil {
		t.Fatalf("Compile query: %v", err)
	}

	results, err := mssqldialect.Query(ctx, mc.db, compiled)
	if err != nil {
		t.Fatalf("Query failed: %v\nSQL: %s", err, compiled.SQL)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(results))
	}
	row, ok := results[0].(map[string]any)
	if !ok {
		t.Fatalf("Expected record result, got %T", results[0])
	}
	if row["username"] != "alice" {
		t.Errorf("Expected alice, got %v", row["username"])
	}
}

func TestMSSQL_TakeWithoutSortFails(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	users := usersTable()
	d := mssqldialect.New()

	_, err := relq.From(users).Take(5).Compile(d)
	if err == nil {
		t.Fatal("Expected unsupported-feature error for LIMIT without ORDER BY")
	}
}
