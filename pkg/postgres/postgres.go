// Package postgres provides the PostgreSQL dialect for relq and a thin
// execution adapter over pgx.
package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/zoobzio/relq"
)

// New returns the PostgreSQL dialect. PostgreSQL covers the full rendering
// surface: $N placeholders, FULL OUTER JOIN, NULLS FIRST/LAST, and the
// VALUES table constructor. Unquoted identifiers fold to lowercase, matching
// server behavior.
func New() *relq.Dialect {
	return &relq.Dialect{
		Name:          "postgres",
		Placeholder:   func(n int) string { return "$" + strconv.Itoa(n) },
		Limit:         relq.LimitOffset,
		Trim:          relq.TrimCharsFrom,
		FullOuterJoin: true,
		NullsOrdering: true,
		ValuesClause:  true,
		FoldIdent:     strings.ToLower,
	}
}

// Querier is the subset of pgx connection behavior the adapter needs.
// *pgx.Conn and pgxpool.Pool both satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Query runs a compiled query and reconstructs every row onto the query's
// shape.
func Query(ctx context.Context, conn Querier, c *relq.Compiled) ([]any, error) {
	rows, err := conn.Query(ctx, c.SQL, c.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		cells, err := rows.Values()
		if err != nil {
			return nil, err
		}
		v, err := c.Reconstruct(cells)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Exec runs a compiled statement and reports the affected row count.
func Exec(ctx context.Context, conn *pgx.Conn, c *relq.Compiled) (int64, error) {
	tag, err := conn.Exec(ctx, c.SQL, c.Args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
