// Package mysql provides the MySQL dialect for relq and a database/sql
// execution adapter over the canonical driver.
package mysql

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"

	"github.com/zoobzio/relq"
	"github.com/zoobzio/relq/internal/scan"
)

// New returns the MySQL dialect. MySQL has no FULL OUTER JOIN and no NULLS
// FIRST/LAST, so those render through the portable rewrites. LENGTH maps to
// CHAR_LENGTH: MySQL's LENGTH counts bytes, not characters.
func New() *relq.Dialect {
	return &relq.Dialect{
		Name:      "mysql",
		Functions: map[string]string{"LENGTH": "CHAR_LENGTH"},
	}
}

// Open opens a database handle from a MySQL DSN.
func Open(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
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
