package relq

import "fmt"

// TableRef identifies one use of a physical table or a subquery boundary
// within a single compile. Each From call mints a fresh reference, so the
// same physical table can appear several times in one statement under
// distinct aliases.
type TableRef struct {
	name      string
	generated bool // subquery or values boundary
}

// ColumnDef describes one column of a schema table: its name, semantic type,
// and nullability, in declaration order.
type ColumnDef struct {
	Name     string
	Type     Type
	Nullable bool
}

// Table is a schema-backed physical table: a name plus an ordered column
// list. Tables come from a Schema or from NewTable for ad-hoc use.
type Table struct {
	name string
	cols []ColumnDef
}

// NewTable builds a table description without a schema. At least one column
// is required.
func NewTable(name string, cols ...ColumnDef) *Table {
	if name == "" {
		panic(fmt.Errorf("table name cannot be empty"))
	}
	if len(cols) == 0 {
		panic(fmt.Errorf("table %q needs at least one column", name))
	}
	return &Table{name: name, cols: cols}
}

// Name returns the physical table name.
func (t *Table) Name() string { return t.name }

// Columns returns the ordered column definitions.
func (t *Table) Columns() []ColumnDef { return t.cols }

func (t *Table) column(name string) (ColumnDef, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// C returns a bare (unqualified) column expression for use in update and
// delete statements, where the target table renders without an alias.
func (t *Table) C(name string) Expr {
	col, ok := t.column(name)
	if !ok {
		panic(fmt.Errorf("table %q has no column %q", t.name, name))
	}
	n := &exprNode{kind: exprColumn, typ: col.Type, nullable: col.Nullable}
	n.col = &columnRef{table: nil, name: col.Name}
	return Expr{n}
}

// From starts a query over a table. Every call mints a fresh table reference
// with fresh column expressions; the query's shape is a record of the
// table's columns.
func From(t *Table) *Query {
	ref := &TableRef{name: t.name}
	fields := make([]RecField, len(t.cols))
	for i, c := range t.cols {
		fields[i] = Fld(c.Name, newColumnExpr(ref, c.Name, c.Type, c.Nullable))
	}
	shape := Rec(fields...)
	return &Query{
		node:  &scanNode{ref: ref, table: t, shape: shape},
		shape: shape,
	}
}
