// Package mssql provides the SQL Server dialect for relq and a database/sql
// execution adapter over go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"strconv"

	mssqldb "github.com/microsoft/go-mssqldb"

	"github.com/zoobzio/relq"
	"github.com/zoobzio/relq/internal/scan"
)

// New returns the SQL Server dialect: @pN placeholders, OFFSET ... FETCH
// pagination (which requires an ORDER BY), TRIM(chars FROM s) without the
// BOTH keyword (a 2022 addition), and T-SQL type and function names. NULLS
// FIRST/LAST is unsupported and renders through the portable rewrite.
func New() *relq.Dialect {
	return &relq.Dialect{
		Name:          "mssql",
		Placeholder:   func(n int) string { return "@p" + strconv.Itoa(n) },
		Limit:         relq.OffsetFetch,
		Trim:          relq.TrimCharsFromBare,
		FullOuterJoin: true,
		ValuesClause:  true,
		CastNames: map[relq.Type]string{
			relq.TBool:   "BIT",
			relq.TInt:    "BIGINT",
			relq.TFloat:  "FLOAT",
			relq.TString: "NVARCHAR(MAX)",
			relq.TTime:   "DATETIME2",
			relq.TBytes:  "VARBINARY(MAX)",
		},
		Functions: map[string]string{"LENGTH": "LEN"},
	}
}

// Open opens a database handle from a SQL Server connection string.
func Open(dsn string) (*sql.DB, error) {
	connector, err := mssqldb.NewConnector(dsn)
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
