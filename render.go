package relq

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates SQL text and the bound parameter values in emission
// order. Placeholders come from the dialect; values are never inlined.
type sqlWriter struct {
	sb   strings.Builder
	args []any
	d    *Dialect
	ctx  *Context
}

func (w *sqlWriter) str(s string) {
	w.sb.WriteString(s)
}

func (w *sqlWriter) param(v any) {
	w.args = append(w.args, v)
	w.sb.WriteString(w.d.placeholder(len(w.args)))
}

func writeExpr(w *sqlWriter, n *exprNode) error {
	switch n.kind {
	case exprColumn:
		return writeColumn(w, n.col)

	case exprLit:
		w.param(n.lit)
		return nil

	case exprBinary:
		// Self-grouping AND/OR parenthesize the whole expression; their
		// comparison operands bind tighter and need no parens of their own.
		if n.grouped {
			w.str("(")
			if err := writeExpr(w, n.args[0]); err != nil {
				return err
			}
			w.str(" " + n.op + " ")
			if err := writeExpr(w, n.args[1]); err != nil {
				return err
			}
			w.str(")")
			return nil
		}
		if err := writeOperand(w, n.args[0]); err != nil {
			return err
		}
		w.str(" " + n.op + " ")
		if err := writeOperand(w, n.args[1]); err != nil {
			return err
		}
		return nil

	case exprNot:
		w.str("NOT (")
		if err := writeExpr(w, n.args[0]); err != nil {
			return err
		}
		w.str(")")
		return nil

	case exprNullTest:
		if err := writeOperand(w, n.args[0]); err != nil {
			return err
		}
		w.str(" " + n.op)
		return nil

	case exprIn:
		if err := writeOperand(w, n.args[0]); err != nil {
			return err
		}
		w.str(" IN (")
		for i, a := range n.args[1:] {
			if i > 0 {
				w.str(", ")
			}
			if err := writeExpr(w, a); err != nil {
				return err
			}
		}
		w.str(")")
		return nil

	case exprFunc:
		w.str(w.d.funcName(n.op) + "(")
		for i, a := range n.args {
			if i > 0 {
				w.str(", ")
			}
			if err := writeExpr(w, a); err != nil {
				return err
			}
		}
		w.str(")")
		return nil

	case exprTrimChars:
		if w.d.Trim == TrimCharsArg {
			w.str(w.d.funcName("TRIM") + "(")
			if err := writeExpr(w, n.args[0]); err != nil {
				return err
			}
			w.str(", ")
			if err := writeExpr(w, n.args[1]); err != nil {
				return err
			}
			w.str(")")
			return nil
		}
		w.str(w.d.funcName("TRIM") + "(")
		if w.d.Trim != TrimCharsFromBare {
			w.str("BOTH ")
		}
		if err := writeExpr(w, n.args[1]); err != nil {
			return err
		}
		w.str(" FROM ")
		if err := writeExpr(w, n.args[0]); err != nil {
			return err
		}
		w.str(")")
		return nil

	case exprCast:
		w.str("CAST(")
		if err := writeExpr(w, n.args[0]); err != nil {
			return err
		}
		w.str(" AS " + w.d.castName(n.castTo) + ")")
		return nil

	case exprAgg:
		w.str(n.op + "(")
		if err := writeExpr(w, n.args[0]); err != nil {
			return err
		}
		w.str(")")
		return nil

	case exprCountAll:
		w.str("COUNT(*)")
		return nil

	case exprOption:
		return writeExpr(w, n.args[0])

	default:
		return ConsistencyError{Detail: fmt.Sprintf("unknown expression kind %d", int(n.kind))}
	}
}

// writeOperand parenthesizes nested binary operands; self-grouping AND/OR
// bring their own parentheses.
func writeOperand(w *sqlWriter, n *exprNode) error {
	if n.kind == exprBinary && !n.grouped {
		w.str("(")
		if err := writeExpr(w, n); err != nil {
			return err
		}
		w.str(")")
		return nil
	}
	return writeExpr(w, n)
}

func writeColumn(w *sqlWriter, c *columnRef) error {
	name := c.name
	if !c.generated {
		name = w.d.foldIdent(name)
	}
	if c.table == nil {
		w.str(name)
		return nil
	}
	alias, ok := w.ctx.alias(c.table)
	if !ok {
		return ConsistencyError{Detail: fmt.Sprintf("expression references relation %q which is not reachable in this statement", c.table.name)}
	}
	w.str(alias + "." + name)
	return nil
}

func renderStmt(s stmt, w *sqlWriter) error {
	switch b := s.(type) {
	case *selectBlock:
		return renderSelect(b, w)
	case *compoundStmt:
		return renderCompound(b, w)
	default:
		return ConsistencyError{Detail: "unknown statement form"}
	}
}

const noOverride = joinKind(-1)

func renderSelect(b *selectBlock, w *sqlWriter) error {
	outers := 0
	for _, j := range b.joins {
		if j.kind == joinOuter {
			outers++
		}
	}
	if outers > 0 && !w.d.FullOuterJoin {
		return renderOuterFallback(b, w, outers)
	}

	if err := renderSelectCore(b, w, noOverride); err != nil {
		return err
	}
	if err := renderOrderBy(b.orderBy, w); err != nil {
		return err
	}
	return renderLimit(b.limit, b.offset, len(b.orderBy) > 0, w)
}

// renderOuterFallback rewrites a full outer join as LEFT JOIN ... UNION
// RIGHT JOIN for dialects without FULL OUTER JOIN. Plain UNION is required:
// rows matched in both directions appear in both halves and must
// deduplicate.
func renderOuterFallback(b *selectBlock, w *sqlWriter, outers int) error {
	if outers > 1 {
		return NewUnsupportedFeatureError(w.d.Name, "multiple full outer joins",
			"the union rewrite covers a single outer join")
	}
	if err := renderSelectCore(b, w, joinLeft); err != nil {
		return err
	}
	w.str(" UNION ")
	if err := renderSelectCore(b, w, joinRight); err != nil {
		return err
	}
	// ORDER BY applies to the whole union, so keys must resolve to output
	// labels rather than table-qualified names.
	if len(b.orderBy) > 0 {
		w.str(" ORDER BY ")
		for i, k := range b.orderBy {
			if i > 0 {
				w.str(", ")
			}
			label := ""
			for _, c := range b.selectList {
				if c.expr.n == k.expr.n {
					label = c.label
					break
				}
			}
			if label == "" {
				return NewUnsupportedFeatureError(w.d.Name, "ordering an outer-join union by a non-projected expression")
			}
			w.str(label)
			w.str(direction(k.desc))
		}
	}
	return renderLimit(b.limit, b.offset, len(b.orderBy) > 0, w)
}

func renderSelectCore(b *selectBlock, w *sqlWriter, outerAs joinKind) error {
	w.str("SELECT ")
	for i, c := range b.selectList {
		if i > 0 {
			w.str(", ")
		}
		if err := writeExpr(w, c.expr.n); err != nil {
			return err
		}
		w.str(" AS " + c.label)
	}

	w.str(" FROM ")
	if err := renderSource(b.from, w); err != nil {
		return err
	}

	for _, j := range b.joins {
		kind := j.kind
		if kind == joinOuter && outerAs != noOverride {
			kind = outerAs
		}
		w.str(" " + joinKeyword(kind) + " ")
		if err := renderSource(j.src, w); err != nil {
			return err
		}
		if kind != joinCross && j.on.valid() {
			w.str(" ON ")
			if err := writeExpr(w, j.on.n); err != nil {
				return err
			}
		}
	}

	if len(b.where) > 0 {
		w.str(" WHERE ")
		for i, p := range b.where {
			if i > 0 {
				w.str(" AND ")
			}
			if err := writeExpr(w, p.n); err != nil {
				return err
			}
		}
	}

	if len(b.groupBy) > 0 {
		w.str(" GROUP BY ")
		for i, g := range b.groupBy {
			if i > 0 {
				w.str(", ")
			}
			if err := writeExpr(w, g.n); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinKeyword(kind joinKind) string {
	switch kind {
	case joinInner:
		return "JOIN"
	case joinLeft:
		return "LEFT JOIN"
	case joinRight:
		return "RIGHT JOIN"
	case joinOuter:
		return "FULL OUTER JOIN"
	case joinCross:
		return "CROSS JOIN"
	default:
		panic(ConsistencyError{Detail: fmt.Sprintf("unknown join kind %d", int(kind))})
	}
}

func direction(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}

func renderOrderBy(keys []sortKey, w *sqlWriter) error {
	if len(keys) == 0 {
		return nil
	}
	w.str(" ORDER BY ")
	for i, k := range keys {
		if i > 0 {
			w.str(", ")
		}
		if k.nulls != nullsDefault && !w.d.NullsOrdering {
			// IS NULL sorts false before true ascending, so DESC floats
			// NULLs first and ASC sinks them last.
			if err := writeOperand(w, k.expr.n); err != nil {
				return err
			}
			if k.nulls == nullsFirst {
				w.str(" IS NULL DESC, ")
			} else {
				w.str(" IS NULL ASC, ")
			}
		}
		if err := writeOperand(w, k.expr.n); err != nil {
			return err
		}
		w.str(direction(k.desc))
		if k.nulls != nullsDefault && w.d.NullsOrdering {
			if k.nulls == nullsFirst {
				w.str(" NULLS FIRST")
			} else {
				w.str(" NULLS LAST")
			}
		}
	}
	return nil
}

func renderLimit(limit, offset *int, hasOrder bool, w *sqlWriter) error {
	if limit == nil && offset == nil {
		return nil
	}
	switch w.d.Limit {
	case OffsetFetch:
		if !hasOrder {
			return NewUnsupportedFeatureError(w.d.Name, "OFFSET ... FETCH without ORDER BY",
				"add a sort key before Take or Drop")
		}
		off := 0
		if offset != nil {
			off = *offset
		}
		w.str(" OFFSET " + strconv.Itoa(off) + " ROWS")
		if limit != nil {
			w.str(" FETCH NEXT " + strconv.Itoa(*limit) + " ROWS ONLY")
		}
		return nil
	default:
		if limit != nil {
			w.str(" LIMIT " + strconv.Itoa(*limit))
		}
		if offset != nil {
			w.str(" OFFSET " + strconv.Itoa(*offset))
		}
		return nil
	}
}

func renderSource(src source, w *sqlWriter) error {
	switch t := src.(type) {
	case *tableSrc:
		alias, ok := w.ctx.alias(t.ref)
		if !ok {
			return ConsistencyError{Detail: fmt.Sprintf("table %q has no alias", t.name)}
		}
		w.str(w.d.foldIdent(t.name) + " " + alias)
		return nil

	case *subquerySrc:
		alias, ok := w.ctx.alias(t.box.ref)
		if !ok {
			return ConsistencyError{Detail: "subquery boundary has no alias"}
		}
		w.str("(")
		if err := renderStmt(t.inner, w); err != nil {
			return err
		}
		w.str(") " + alias)
		return nil

	case *valuesSrc:
		return renderValues(t.node, w)

	default:
		return ConsistencyError{Detail: "unknown relation source"}
	}
}

func renderValues(v *valuesNode, w *sqlWriter) error {
	alias, ok := w.ctx.alias(v.ref)
	if !ok {
		return ConsistencyError{Detail: "values relation has no alias"}
	}
	if w.d.ValuesClause {
		w.str("(VALUES ")
		for i, row := range v.rows {
			if i > 0 {
				w.str(", ")
			}
			w.str("(")
			for j, val := range row {
				if j > 0 {
					w.str(", ")
				}
				w.param(val)
			}
			w.str(")")
		}
		// Values column names are relation labels the caller invented, not
		// physical identifiers; they never fold.
		w.str(") " + alias + " (")
		for i, name := range v.names {
			if i > 0 {
				w.str(", ")
			}
			w.str(name)
		}
		w.str(")")
		return nil
	}

	// Portable fallback: a UNION ALL chain of single-row SELECTs, column
	// names established by the first row.
	w.str("(")
	for i, row := range v.rows {
		if i > 0 {
			w.str(" UNION ALL ")
		}
		w.str("SELECT ")
		for j, val := range row {
			if j > 0 {
				w.str(", ")
			}
			w.param(val)
			if i == 0 {
				w.str(" AS " + v.names[j])
			}
		}
	}
	w.str(") " + alias)
	return nil
}

func renderInsertValues(st *InsertStmt, w *sqlWriter) error {
	w.str("INSERT INTO " + w.d.foldIdent(st.table.name) + " (")
	for i, s := range st.sets {
		if i > 0 {
			w.str(", ")
		}
		w.str(w.d.foldIdent(s.col))
	}
	w.str(") VALUES (")
	for i, s := range st.sets {
		if i > 0 {
			w.str(", ")
		}
		if err := writeExpr(w, s.value.n); err != nil {
			return err
		}
	}
	w.str(")")
	return nil
}

func renderInsertBatch(st *InsertBatch, w *sqlWriter) error {
	w.str("INSERT INTO " + w.d.foldIdent(st.table.name) + " (")
	for i, c := range st.cols {
		if i > 0 {
			w.str(", ")
		}
		w.str(w.d.foldIdent(c.Name))
	}
	w.str(") VALUES ")
	for i, row := range st.rows {
		if i > 0 {
			w.str(", ")
		}
		w.str("(")
		for j, v := range row {
			if j > 0 {
				w.str(", ")
			}
			w.param(v)
		}
		w.str(")")
	}
	return nil
}

func renderInsertSelect(st *InsertSelectStmt, w *sqlWriter) error {
	w.str("INSERT INTO " + w.d.foldIdent(st.table.name) + " (")
	for i, c := range st.cols {
		if i > 0 {
			w.str(", ")
		}
		w.str(w.d.foldIdent(c.Name))
	}
	w.str(") ")
	s, err := lower(st.query.node)
	if err != nil {
		return err
	}
	pruneStmt(s, nil)
	if err := validateScopes(s); err != nil {
		return err
	}
	assignAliases(s, w.ctx)
	return renderStmt(s, w)
}

func renderUpdate(st *UpdateStmt, w *sqlWriter) error {
	w.str("UPDATE " + w.d.foldIdent(st.table.name) + " SET ")
	for i, s := range st.sets {
		if i > 0 {
			w.str(", ")
		}
		w.str(w.d.foldIdent(s.col) + " = ")
		if err := writeExpr(w, s.value.n); err != nil {
			return err
		}
	}
	w.str(" WHERE ")
	return writeExpr(w, st.pred.n)
}

func renderDelete(st *DeleteStmt, w *sqlWriter) error {
	w.str("DELETE FROM " + w.d.foldIdent(st.table.name) + " WHERE ")
	return writeExpr(w, st.pred.n)
}

func renderCompound(b *compoundStmt, w *sqlWriter) error {
	if err := renderStmt(b.left, w); err != nil {
		return err
	}
	w.str(" " + b.op.keyword() + " ")
	if err := renderStmt(b.right, w); err != nil {
		return err
	}
	if err := renderOrderBy(b.orderBy, w); err != nil {
		return err
	}
	return renderLimit(b.limit, b.offset, len(b.orderBy) > 0, w)
}
