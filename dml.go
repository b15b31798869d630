package relq

import "fmt"

// Assignment pairs a target column with the expression assigned to it.
type Assignment struct {
	col   string
	value Expr
}

// Set builds a column assignment for insert and update statements.
func Set(col string, value Expr) Assignment {
	return Assignment{col: col, value: value}
}

func checkAssignments(t *Table, sets []Assignment, allowColumns bool) error {
	if len(sets) == 0 {
		return fmt.Errorf("statement needs at least one assignment")
	}
	seen := make(map[string]bool, len(sets))
	for _, s := range sets {
		col, ok := t.column(s.col)
		if !ok {
			return fmt.Errorf("table %q has no column %q", t.name, s.col)
		}
		if seen[s.col] {
			return fmt.Errorf("duplicate assignment to column %q", s.col)
		}
		seen[s.col] = true
		if !s.value.valid() {
			return fmt.Errorf("assignment to %q has nil value", s.col)
		}
		if s.value.n.agg {
			return fmt.Errorf("assignment to %q cannot contain aggregate expressions", s.col)
		}
		if s.value.n.typ != col.Type {
			return fmt.Errorf("assignment to %q: expected %s, got %s value", s.col, col.Type, s.value.n.typ)
		}
		if !allowColumns {
			var refs bool
			walkExprNodes(s.value.n, func(n *exprNode) {
				if n.kind == exprColumn {
					refs = true
				}
			})
			if refs {
				return fmt.Errorf("insert value for %q cannot reference columns", s.col)
			}
		}
	}
	return nil
}

func checkDMLPredicate(verb string, pred Expr) error {
	if !pred.valid() {
		return fmt.Errorf("%s requires an explicit filter predicate; pass Lit(true) to affect every row", verb)
	}
	if pred.n.typ != TBool {
		return fmt.Errorf("%s predicate must be boolean, got %s", verb, pred.n.typ)
	}
	if pred.n.agg {
		return fmt.Errorf("%s predicate cannot contain aggregate expressions", verb)
	}
	return nil
}

// InsertStmt inserts a single row of column assignments.
type InsertStmt struct {
	table *Table
	sets  []Assignment
	err   error
}

// InsertValues builds a single-row insert from column assignments. Values
// may be arbitrary column-free expressions; literals bind as parameters.
func InsertValues(t *Table, sets ...Assignment) *InsertStmt {
	st := &InsertStmt{table: t, sets: sets}
	st.err = checkAssignments(t, sets, false)
	return st
}

// InsertBatch inserts a fixed column list with N positional rows, one
// bound-parameter row per tuple.
type InsertBatch struct {
	table *Table
	cols  []ColumnDef
	rows  [][]any
	err   error
}

// InsertBatched builds a multi-row positional insert. Every row must match
// the column list's arity and types; a mismatch is a construction error,
// never a silent coercion.
func InsertBatched(t *Table, cols []string, rows ...[]any) *InsertBatch {
	st := &InsertBatch{table: t}
	if len(cols) == 0 {
		st.err = fmt.Errorf("batched insert needs at least one column")
		return st
	}
	defs := make([]ColumnDef, len(cols))
	seen := make(map[string]bool, len(cols))
	for i, name := range cols {
		def, ok := t.column(name)
		if !ok {
			st.err = fmt.Errorf("table %q has no column %q", t.name, name)
			return st
		}
		if seen[name] {
			st.err = fmt.Errorf("duplicate insert column %q", name)
			return st
		}
		seen[name] = true
		defs[i] = def
	}
	if len(rows) == 0 {
		st.err = fmt.Errorf("batched insert needs at least one row")
		return st
	}
	for i, row := range rows {
		if len(row) != len(defs) {
			st.err = ArityError{What: fmt.Sprintf("insert row %d", i), Want: len(defs), Got: len(row)}
			return st
		}
		for j, v := range row {
			typ, err := litType(v)
			if err != nil {
				st.err = fmt.Errorf("insert row %d column %q: %w", i, defs[j].Name, err)
				return st
			}
			if typ != defs[j].Type {
				st.err = fmt.Errorf("insert row %d column %q: expected %s, got %s value", i, defs[j].Name, defs[j].Type, typ)
				return st
			}
		}
	}
	st.cols = defs
	st.rows = rows
	return st
}

// InsertSelectStmt inserts the rows produced by a query.
type InsertSelectStmt struct {
	table *Table
	cols  []ColumnDef
	query *Query
	err   error
}

// InsertSelect builds an INSERT ... SELECT mapping the query's flattened
// output columns onto the given column list positionally.
func InsertSelect(t *Table, cols []string, q *Query) *InsertSelectStmt {
	st := &InsertSelectStmt{table: t, query: q}
	if q == nil {
		st.err = fmt.Errorf("insert select: query is nil")
		return st
	}
	if q.err != nil {
		st.err = q.err
		return st
	}
	if len(cols) == 0 {
		st.err = fmt.Errorf("insert select needs at least one column")
		return st
	}
	defs := make([]ColumnDef, len(cols))
	seen := make(map[string]bool, len(cols))
	for i, name := range cols {
		def, ok := t.column(name)
		if !ok {
			st.err = fmt.Errorf("table %q has no column %q", t.name, name)
			return st
		}
		if seen[name] {
			st.err = fmt.Errorf("duplicate insert column %q", name)
			return st
		}
		seen[name] = true
		defs[i] = def
	}
	shapeCols := flattenShape(q.shape)
	if len(shapeCols) != len(defs) {
		st.err = ArityError{What: "insert select columns", Want: len(defs), Got: len(shapeCols)}
		return st
	}
	for i, c := range shapeCols {
		if c.expr.n.typ != defs[i].Type {
			st.err = fmt.Errorf("insert select column %q: expected %s, got %s value", defs[i].Name, defs[i].Type, c.expr.n.typ)
			return st
		}
	}
	st.cols = defs
	return st
}

// UpdateStmt updates rows matching a mandatory predicate.
type UpdateStmt struct {
	table *Table
	pred  Expr
	sets  []Assignment
	err   error
}

// Update builds an update statement. The predicate is mandatory: updating
// every row requires an explicit always-true predicate, which still binds as
// a parameter. Assignment expressions may reference the table's own columns
// through Table.C for computed updates.
func Update(t *Table, pred Expr, sets ...Assignment) *UpdateStmt {
	st := &UpdateStmt{table: t, pred: pred, sets: sets}
	if err := checkDMLPredicate("update", pred); err != nil {
		st.err = err
		return st
	}
	st.err = checkAssignments(t, sets, true)
	return st
}

// DeleteStmt deletes rows matching a mandatory predicate.
type DeleteStmt struct {
	table *Table
	pred  Expr
	err   error
}

// Delete builds a delete statement under the same mandatory-predicate
// contract as Update.
func Delete(t *Table, pred Expr) *DeleteStmt {
	st := &DeleteStmt{table: t, pred: pred}
	st.err = checkDMLPredicate("delete", pred)
	return st
}
