package relq

import "fmt"

// features records which structural elements the current operation chain
// already carries. Boxing decisions (wrapping the chain as a named subquery
// before the next operation) are a pure function of these flags.
type features uint8

const (
	fOrdered features = 1 << iota
	fLimited
	fGrouped
	fAggregated
	fCompound
)

// planNode is the closed set of query plan variants. The renderer dispatches
// over this set exhaustively; an unknown variant is a consistency error.
type planNode interface {
	isPlan()
}

type scanNode struct {
	ref   *TableRef
	table *Table
	shape Shape
}

type valuesNode struct {
	ref   *TableRef
	names []string
	types []Type
	rows  [][]any
	shape Shape
}

type filterNode struct {
	src  planNode
	pred Expr
}

type mapNode struct {
	src   planNode
	shape Shape
}

// nullsOrder selects explicit NULLS FIRST/LAST placement for a sort key.
type nullsOrder int

const (
	nullsDefault nullsOrder = iota
	nullsFirst
	nullsLast
)

type sortKey struct {
	expr  Expr
	desc  bool
	nulls nullsOrder
}

type sortNode struct {
	src planNode
	key sortKey
}

type takeNode struct {
	src planNode
	n   int
}

type dropNode struct {
	src planNode
	n   int
}

type groupNode struct {
	src   planNode
	key   Shape
	shape Shape
}

type aggNode struct {
	src   planNode
	shape Shape
}

type joinKind int

const (
	joinInner joinKind = iota
	joinLeft
	joinRight
	joinOuter
	joinCross
)

type joinNode struct {
	left  planNode
	right planNode
	kind  joinKind
	on    Expr // zero for cross joins
	shape Shape
}

type compoundOp int

const (
	opUnion compoundOp = iota
	opUnionAll
	opIntersect
	opExcept
)

type compoundNode struct {
	left  planNode
	right planNode
	op    compoundOp
	shape Shape // bare result-label expressions mirroring the left shape
}

// boundaryEntry maps one generated label of a subquery boundary to the inner
// expression it projects and the outer expression that replaces it above the
// boundary.
type boundaryEntry struct {
	label string
	inner *exprNode
	outer *exprNode
}

type boxNode struct {
	src     planNode
	ref     *TableRef
	entries []boundaryEntry
	shape   Shape
}

func (*scanNode) isPlan()     {}
func (*valuesNode) isPlan()   {}
func (*filterNode) isPlan()   {}
func (*mapNode) isPlan()      {}
func (*sortNode) isPlan()     {}
func (*takeNode) isPlan()     {}
func (*dropNode) isPlan()     {}
func (*groupNode) isPlan()    {}
func (*aggNode) isPlan()      {}
func (*joinNode) isPlan()     {}
func (*compoundNode) isPlan() {}
func (*boxNode) isPlan()      {}

// Query is an immutable operation chain plus its current output shape.
// Combinators are eager: each receives the current shape, validates its
// inputs, and returns a new chain value. Construction errors are carried and
// surfaced at Compile.
type Query struct {
	node  planNode
	shape Shape
	feats features
	err   error
}

// Shape returns the current output shape of the chain.
func (q *Query) Shape() Shape { return q.shape }

// Err returns any construction error carried by the chain.
func (q *Query) Err() error { return q.err }

func (q *Query) fail(format string, args ...any) *Query {
	return &Query{err: fmt.Errorf(format, args...)}
}

// boxQuery wraps the chain as a named subquery boundary: the boundary
// projects the full current shape under generated labels, and the returned
// chain's shape is rebound so every outside reference resolves to
// <subqueryAlias>.<label>. Liveness pruning later narrows the projection to
// the labels actually referenced above the boundary.
func boxQuery(q *Query) *Query {
	cols := flattenShape(q.shape)
	ref := &TableRef{name: "subquery", generated: true}
	entries := make([]boundaryEntry, len(cols))
	memo := make(map[*exprNode]Expr, len(cols))
	for i, c := range cols {
		outer, ok := memo[c.expr.n]
		if !ok {
			outer = newLabelExpr(ref, c.label, c.expr.n.typ, c.nullable)
			memo[c.expr.n] = outer
		}
		entries[i] = boundaryEntry{label: c.label, inner: c.expr.n, outer: outer.n}
	}
	shape := rebindShape(q.shape, func(e Expr) Expr {
		o, ok := memo[e.n]
		if !ok {
			panic(ConsistencyError{Detail: "shape leaf missing from boundary projection"})
		}
		return o
	})
	return &Query{
		node:  &boxNode{src: q.node, ref: ref, entries: entries, shape: shape},
		shape: shape,
	}
}

// Filter narrows the result to rows satisfying the predicate. Successive
// filters AND together. A chain already carrying ordering, limits, grouping,
// an aggregate, or a compound is boxed first, since SQL cannot filter such a
// result without a nested SELECT.
func (q *Query) Filter(pred func(Shape) Expr) *Query {
	if q.err != nil {
		return q
	}
	src := q
	if q.feats&(fOrdered|fLimited|fGrouped|fAggregated|fCompound) != 0 {
		src = boxQuery(q)
	}
	p := pred(src.shape)
	if !p.valid() {
		return q.fail("filter predicate is nil")
	}
	if p.n.typ != TBool {
		return q.fail("filter predicate must be boolean, got %s", p.n.typ)
	}
	if p.n.agg {
		return q.fail("filter predicate cannot contain aggregate expressions")
	}
	return &Query{
		node:  &filterNode{src: src.node, pred: p},
		shape: src.shape,
		feats: src.feats,
	}
}

// Map replaces the output shape with a projection over the current one.
// Columns the projection drops become eligible for liveness pruning. Only a
// compound upstream forces boxing.
func (q *Query) Map(proj func(Shape) Shape) *Query {
	if q.err != nil {
		return q
	}
	src := q
	if q.feats&fCompound != 0 {
		src = boxQuery(q)
	}
	s := proj(src.shape)
	if s == nil {
		return q.fail("projection shape is nil")
	}
	cols := flattenShape(s)
	if len(cols) == 0 {
		return q.fail("projection shape is empty")
	}
	if src.feats&(fGrouped|fAggregated) == 0 {
		for _, c := range cols {
			if c.expr.n.agg {
				return q.fail("aggregate expression outside grouping; use GroupBy or Aggregate")
			}
		}
	}
	return &Query{
		node:  &mapNode{src: src.node, shape: s},
		shape: s,
		feats: src.feats,
	}
}

// SortBy adds an ascending sort on the key as the new primary ordering;
// earlier sorts become secondary. A limited chain is boxed first, since SQL
// cannot re-order an already limited result without nesting.
func (q *Query) SortBy(key func(Shape) Expr) *Query {
	if q.err != nil {
		return q
	}
	src := q
	if q.feats&fLimited != 0 {
		src = boxQuery(q)
	}
	k := key(src.shape)
	if !k.valid() {
		return q.fail("sort key is nil")
	}
	return &Query{
		node:  &sortNode{src: src.node, key: sortKey{expr: k}},
		shape: src.shape,
		feats: src.feats | fOrdered,
	}
}

func (q *Query) amendSort(f func(*sortKey)) *Query {
	if q.err != nil {
		return q
	}
	sn, ok := q.node.(*sortNode)
	if !ok {
		return q.fail("sort direction must immediately follow SortBy")
	}
	key := sn.key
	f(&key)
	return &Query{
		node:  &sortNode{src: sn.src, key: key},
		shape: q.shape,
		feats: q.feats,
	}
}

// Asc makes the most recent sort key ascending.
func (q *Query) Asc() *Query {
	return q.amendSort(func(k *sortKey) { k.desc = false })
}

// Desc makes the most recent sort key descending.
func (q *Query) Desc() *Query {
	return q.amendSort(func(k *sortKey) { k.desc = true })
}

// NullsFirst places NULLs first for the most recent sort key.
func (q *Query) NullsFirst() *Query {
	return q.amendSort(func(k *sortKey) { k.nulls = nullsFirst })
}

// NullsLast places NULLs last for the most recent sort key.
func (q *Query) NullsLast() *Query {
	return q.amendSort(func(k *sortKey) { k.nulls = nullsLast })
}

// Take keeps the first n rows. Successive Take and Drop calls compose
// arithmetically, so pagination never introduces a subquery on its own.
func (q *Query) Take(n int) *Query {
	if q.err != nil {
		return q
	}
	if n < 0 {
		return q.fail("take count cannot be negative: %d", n)
	}
	return &Query{
		node:  &takeNode{src: q.node, n: n},
		shape: q.shape,
		feats: q.feats | fLimited,
	}
}

// Drop skips the first n rows. Like Take, it composes with earlier limits.
func (q *Query) Drop(n int) *Query {
	if q.err != nil {
		return q
	}
	if n < 0 {
		return q.fail("drop count cannot be negative: %d", n)
	}
	return &Query{
		node:  &dropNode{src: q.node, n: n},
		shape: q.shape,
		feats: q.feats | fLimited,
	}
}

// collectRefs gathers every table, values, and boundary reference reachable
// in a plan.
func collectRefs(n planNode, out map[*TableRef]bool) {
	switch t := n.(type) {
	case *scanNode:
		out[t.ref] = true
	case *valuesNode:
		out[t.ref] = true
	case *filterNode:
		collectRefs(t.src, out)
	case *mapNode:
		collectRefs(t.src, out)
	case *sortNode:
		collectRefs(t.src, out)
	case *takeNode:
		collectRefs(t.src, out)
	case *dropNode:
		collectRefs(t.src, out)
	case *groupNode:
		collectRefs(t.src, out)
	case *aggNode:
		collectRefs(t.src, out)
	case *joinNode:
		collectRefs(t.left, out)
		collectRefs(t.right, out)
	case *compoundNode:
		collectRefs(t.left, out)
		collectRefs(t.right, out)
	case *boxNode:
		out[t.ref] = true
		collectRefs(t.src, out)
	}
}

func sharesRefs(a, b planNode) bool {
	left := make(map[*TableRef]bool)
	collectRefs(a, left)
	right := make(map[*TableRef]bool)
	collectRefs(b, right)
	for ref := range right {
		if left[ref] {
			return true
		}
	}
	return false
}
