// Package sqlite provides the SQLite dialect for relq backed by the pure-Go
// modernc.org driver.
package sqlite

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/zoobzio/relq"
	"github.com/zoobzio/relq/internal/scan"
)

// New returns the SQLite dialect. Modern SQLite carries FULL OUTER JOIN
// (3.39), NULLS FIRST/LAST (3.30), and the VALUES constructor; TRIM takes
// its character set as a second argument rather than the standard
// BOTH ... FROM form.
func New() *relq.Dialect {
	return &relq.Dialect{
		Name:          "sqlite",
		Trim:          relq.TrimCharsArg,
		FullOuterJoin: true,
		NullsOrdering: true,
		ValuesClause:  true,
		CastNames: map[relq.Type]string{
			relq.TBool:   "INTEGER",
			relq.TInt:    "INTEGER",
			relq.TFloat:  "REAL",
			relq.TString: "TEXT",
			relq.TTime:   "TEXT",
			relq.TBytes:  "BLOB",
		},
	}
}

// Open opens a database handle from a SQLite DSN (a file path or :memory:).
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("sqlite", dsn)
}

// Query runs a compiled query and reconstructs every row onto the query's
// shape.
func Query(ctx context.Context, db *sql.DB, c *relq.Compiled) ([]any, error) {
	return scan.Query(ctx, db, c)
}

// Exec runs a compiled statement and reports the affected row count.
func Exec(ctx context.Context, db *sql.DB, c *relq.Compiled) (int64, error) {
	return scan.Exec(ctx, db, c)
}
