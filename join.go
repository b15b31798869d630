package relq

import "fmt"

// Nullable wraps the optionally-present side of a left, right, or outer
// join. It forwards column access as nullable expressions and exposes
// emptiness tests against a designated non-nullable probe column.
type Nullable struct {
	inner Shape
	probe Expr
}

func (*Nullable) isShape() {}

// newNullable picks the first non-nullable flattened column as the probe; for
// a table scan that is usually the primary key. A shape with only nullable
// columns falls back to its leading column, which can misreport emptiness for
// a matched row whose probe value is NULL.
func newNullable(s Shape) *Nullable {
	cols := flattenShape(s)
	if len(cols) == 0 {
		panic(ConsistencyError{Detail: "nullable wrapper over empty shape"})
	}
	probe := cols[0].expr
	for _, c := range cols {
		if !c.nullable {
			probe = c.expr
			break
		}
	}
	return &Nullable{inner: s, probe: probe}
}

// Col returns the named column of the wrapped record as a nullable
// expression.
func (n *Nullable) Col(name string) Expr {
	r, ok := n.inner.(*Record)
	if !ok {
		panic(fmt.Errorf("nullable shape %T has no named columns", n.inner))
	}
	return optionExpr(r.Col(name))
}

// ExprAt returns the expression at position i of the wrapped tuple as a
// nullable expression.
func (n *Nullable) ExprAt(i int) Expr {
	t, ok := n.inner.(*Tuple)
	if !ok {
		panic(fmt.Errorf("nullable shape %T has no positional items", n.inner))
	}
	return optionExpr(t.ExprAt(i))
}

// IsEmpty is true when the joined side matched no row: the probe column
// renders IS NULL.
func (n *Nullable) IsEmpty() Expr { return n.probe.IsNull() }

// IsDefined is true when the joined side matched a row.
func (n *Nullable) IsDefined() Expr { return n.probe.IsNotNull() }

// AsExpr converts a primitive wrapped shape into an ordinary nullable
// expression usable in further predicates and sorts.
func (n *Nullable) AsExpr() Expr {
	e, ok := n.inner.(Expr)
	if !ok {
		panic(fmt.Errorf("nullable shape %T is not a scalar expression", n.inner))
	}
	return optionExpr(e)
}

// prepareJoin boxes the left side when SQL cannot extend it with a join
// directly, and boxes the right side unless it is a bare relation. A right
// side sharing table references with the left is cloned first so each
// consumer gets its own aliases.
func prepareJoin(q, right *Query) (l, r *Query, err error) {
	if q.err != nil {
		return nil, nil, q.err
	}
	if right == nil {
		return nil, nil, fmt.Errorf("join right side is nil")
	}
	if right.err != nil {
		return nil, nil, right.err
	}
	l = q
	if q.feats&(fOrdered|fLimited|fGrouped|fAggregated|fCompound) != 0 {
		l = boxQuery(q)
	}
	r = right
	if sharesRefs(l.node, r.node) {
		r = cloneQuery(r)
	}
	if !isBareSource(r.node) {
		r = boxQuery(r)
	}
	return l, r, nil
}

func isBareSource(n planNode) bool {
	switch n.(type) {
	case *scanNode, *valuesNode:
		return true
	default:
		return false
	}
}

func checkOn(p Expr) error {
	if !p.valid() {
		return fmt.Errorf("join predicate is nil")
	}
	if p.n.typ != TBool {
		return fmt.Errorf("join predicate must be boolean, got %s", p.n.typ)
	}
	if p.n.agg {
		return fmt.Errorf("join predicate cannot contain aggregate expressions")
	}
	return nil
}

func (q *Query) joined(l, r *Query, kind joinKind, on Expr, shape Shape) *Query {
	return &Query{
		node:  &joinNode{left: l.node, right: r.node, kind: kind, on: on, shape: shape},
		shape: shape,
		feats: l.feats,
	}
}

// Join inner-joins another query. The result shape is the tuple of both
// sides' shapes.
func (q *Query) Join(right *Query, on func(l, r Shape) Expr) *Query {
	l, r, err := prepareJoin(q, right)
	if err != nil {
		return &Query{err: err}
	}
	p := on(l.shape, r.shape)
	if err := checkOn(p); err != nil {
		return &Query{err: err}
	}
	return q.joined(l, r, joinInner, p, Tup(l.shape, r.shape))
}

// CrossJoin joins another query with no predicate.
func (q *Query) CrossJoin(right *Query) *Query {
	l, r, err := prepareJoin(q, right)
	if err != nil {
		return &Query{err: err}
	}
	return q.joined(l, r, joinCross, Expr{}, Tup(l.shape, r.shape))
}

// LeftJoin left-joins another query; the right side becomes nullable.
func (q *Query) LeftJoin(right *Query, on func(l Shape, r *Nullable) Expr) *Query {
	l, r, err := prepareJoin(q, right)
	if err != nil {
		return &Query{err: err}
	}
	rn := newNullable(r.shape)
	p := on(l.shape, rn)
	if err := checkOn(p); err != nil {
		return &Query{err: err}
	}
	return q.joined(l, r, joinLeft, p, Tup(l.shape, rn))
}

// RightJoin right-joins another query; the left side becomes nullable.
func (q *Query) RightJoin(right *Query, on func(l *Nullable, r Shape) Expr) *Query {
	l, r, err := prepareJoin(q, right)
	if err != nil {
		return &Query{err: err}
	}
	ln := newNullable(l.shape)
	p := on(ln, r.shape)
	if err := checkOn(p); err != nil {
		return &Query{err: err}
	}
	return q.joined(l, r, joinRight, p, Tup(ln, r.shape))
}

// OuterJoin full-outer-joins another query; both sides become nullable.
// Dialects without FULL OUTER JOIN render this as a UNION of a left and a
// right join.
func (q *Query) OuterJoin(right *Query, on func(l, r *Nullable) Expr) *Query {
	l, r, err := prepareJoin(q, right)
	if err != nil {
		return &Query{err: err}
	}
	ln := newNullable(l.shape)
	rn := newNullable(r.shape)
	p := on(ln, rn)
	if err := checkOn(p); err != nil {
		return &Query{err: err}
	}
	return q.joined(l, r, joinOuter, p, Tup(ln, rn))
}
