package relq

// Compile lowers, prunes, and renders the query for the given dialect. A nil
// dialect compiles to portable SQL. Compiling the same query twice for the
// same dialect yields byte-identical SQL and identical parameter order.
func (q *Query) Compile(d *Dialect) (*Compiled, error) {
	if q.err != nil {
		return nil, q.err
	}
	if d == nil {
		d = Portable()
	}
	s, err := lower(q.node)
	if err != nil {
		return nil, err
	}
	pruneStmt(s, nil)
	if err := validateScopes(s); err != nil {
		return nil, err
	}
	ctx := newContext()
	assignAliases(s, ctx)
	w := &sqlWriter{d: d, ctx: ctx}
	if err := renderStmt(s, w); err != nil {
		return nil, err
	}
	cols, plan := describeShape(q.shape)
	return &Compiled{SQL: w.sb.String(), Args: w.args, Columns: cols, plan: plan}, nil
}

func compileDML(d *Dialect, render func(*sqlWriter) error) (*Compiled, error) {
	if d == nil {
		d = Portable()
	}
	w := &sqlWriter{d: d, ctx: newContext()}
	if err := render(w); err != nil {
		return nil, err
	}
	return &Compiled{SQL: w.sb.String(), Args: w.args}, nil
}

// Compile renders the insert for the given dialect.
func (st *InsertStmt) Compile(d *Dialect) (*Compiled, error) {
	if st.err != nil {
		return nil, st.err
	}
	return compileDML(d, func(w *sqlWriter) error { return renderInsertValues(st, w) })
}

// Compile renders the batched insert for the given dialect.
func (st *InsertBatch) Compile(d *Dialect) (*Compiled, error) {
	if st.err != nil {
		return nil, st.err
	}
	return compileDML(d, func(w *sqlWriter) error { return renderInsertBatch(st, w) })
}

// Compile renders the insert-from-query for the given dialect.
func (st *InsertSelectStmt) Compile(d *Dialect) (*Compiled, error) {
	if st.err != nil {
		return nil, st.err
	}
	return compileDML(d, func(w *sqlWriter) error { return renderInsertSelect(st, w) })
}

// Compile renders the update for the given dialect.
func (st *UpdateStmt) Compile(d *Dialect) (*Compiled, error) {
	if st.err != nil {
		return nil, st.err
	}
	return compileDML(d, func(w *sqlWriter) error { return renderUpdate(st, w) })
}

// Compile renders the delete for the given dialect.
func (st *DeleteStmt) Compile(d *Dialect) (*Compiled, error) {
	if st.err != nil {
		return nil, st.err
	}
	return compileDML(d, func(w *sqlWriter) error { return renderDelete(st, w) })
}
