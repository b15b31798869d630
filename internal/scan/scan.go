// Package scan executes compiled statements against database/sql handles and
// reconstructs result rows onto their query shapes. Dialect packages wrap it
// with their driver's handle type.
package scan

import (
	"context"
	"database/sql"

	"github.com/zoobzio/relq"
)

// Query runs a compiled query and reconstructs every row. Cell values keep
// whatever Go types the driver produces.
func Query(ctx context.Context, db *sql.DB, c *relq.Compiled) ([]any, error) {
	rows, err := db.QueryContext(ctx, c.SQL, c.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		cells := make([]any, len(c.Columns))
		ptrs := make([]any, len(cells))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
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
func Exec(ctx context.Context, db *sql.DB, c *relq.Compiled) (int64, error) {
	res, err := db.ExecContext(ctx, c.SQL, c.Args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
