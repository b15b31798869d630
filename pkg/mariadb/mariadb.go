// Package mariadb provides the MariaDB dialect for relq. MariaDB speaks the
// MySQL wire protocol and shares its driver; the dialect differs only where
// the servers do.
package mariadb

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"

	"github.com/zoobzio/relq"
	"github.com/zoobzio/relq/internal/scan"
)

// New returns the MariaDB dialect. Like MySQL it lacks FULL OUTER JOIN and
// NULLS FIRST/LAST; both render through the portable rewrites.
func New() *relq.Dialect {
	return &relq.Dialect{
		Name:      "mariadb",
		Functions: map[string]string{"LENGTH": "CHAR_LENGTH"},
	}
}

// Open opens a database handle from a MariaDB DSN.
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
