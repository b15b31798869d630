// Package relq builds relational queries as composable in-memory values and
// compiles them to parameterized SQL plus a typed row-reconstruction plan.
//
// # Basic Usage
//
// Queries start from a table definition and chain combinators:
//
//	import "github.com/zoobzio/relq/pkg/postgres"
//
//	users := relq.NewTable("users",
//		relq.ColumnDef{Name: "id", Type: relq.TInt},
//		relq.ColumnDef{Name: "age", Type: relq.TInt},
//	)
//
//	q := relq.From(users).
//		Filter(func(u relq.Shape) relq.Expr {
//			return relq.ColOf(u, "age").Ge(relq.Lit(int64(18)))
//		}).
//		SortBy(func(u relq.Shape) relq.Expr { return relq.ColOf(u, "age") }).Desc().
//		Take(10)
//
//	compiled, err := q.Compile(postgres.New())
//	// compiled.SQL:  SELECT users0.id AS res__id, users0.age AS res__age FROM users users0
//	//                WHERE users0.age >= $1 ORDER BY users0.age DESC LIMIT 10
//	// compiled.Args: [18]
//
// Every literal binds as a parameter; SQL text never embeds a value.
// Combinators that SQL cannot express directly on an already sorted,
// limited, grouped, or compound result box the chain into a subquery
// automatically, prune the subquery's projection to the columns actually
// referenced above it, and rewrite outside references to the boundary's
// generated aliases.
//
// # Multi-Dialect Support
//
// A Dialect value describes a target database's syntax: placeholder style,
// LIMIT/OFFSET versus OFFSET/FETCH, FULL OUTER JOIN support, NULLS ordering,
// the VALUES table constructor, trim arity, and type/function name tables.
// Ready-made dialects with execution adapters live under pkg/: postgres,
// mysql, mariadb, sqlite, mssql. Compile(nil) emits portable SQL-92.
//
// # Schema-Validated Usage
//
// Table definitions can be loaded from a DBML project instead of written by
// hand:
//
//	schema, err := relq.NewSchema(project)
//	if err != nil {
//		return err
//	}
//	users := schema.Table("users") // panics if the table is unknown
//
// # Statements
//
// Besides queries the package compiles InsertValues, InsertBatched,
// InsertSelect, Update, and Delete. Update and Delete require an explicit
// predicate; affecting every row takes a literal Lit(true), which still
// binds as a parameter.
//
// # Results
//
// Compiling a query also yields its output column descriptions and a
// reconstruction plan: Compiled.Reconstruct maps a flat result row back onto
// the query's shape, producing map[string]any for records, []any for
// tuples, plain values for scalars, and nil for the unmatched side of an
// optional join.
package relq
