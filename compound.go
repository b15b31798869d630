package relq

import "fmt"

// compound combines two same-width queries with a set operator. A side
// already carrying ORDER BY or LIMIT is boxed first, since compound
// operators bind the whole left and right statements. The result shape is a
// set of bare result-label expressions mirroring the left shape, so a
// following sort renders ORDER BY over the compound's output labels.
func (q *Query) compound(other *Query, op compoundOp) *Query {
	if q.err != nil {
		return q
	}
	if other == nil {
		return q.fail("compound right side is nil")
	}
	if other.err != nil {
		return &Query{err: other.err}
	}
	l := q
	if q.feats&(fOrdered|fLimited) != 0 {
		l = boxQuery(q)
	}
	r := other
	if other.feats&(fOrdered|fLimited) != 0 {
		r = boxQuery(other)
	}
	lw, rw := shapeWidth(l.shape), shapeWidth(r.shape)
	if lw != rw {
		return q.fail("compound sides have different widths: %d vs %d", lw, rw)
	}

	cols := flattenShape(l.shape)
	memo := make(map[*exprNode]Expr, len(cols))
	for _, c := range cols {
		if _, ok := memo[c.expr.n]; !ok {
			memo[c.expr.n] = newLabelExpr(nil, c.label, c.expr.n.typ, c.nullable)
		}
	}
	shape := rebindShape(l.shape, func(e Expr) Expr {
		o, ok := memo[e.n]
		if !ok {
			panic(ConsistencyError{Detail: "compound shape leaf missing from projection"})
		}
		return o
	})
	return &Query{
		node:  &compoundNode{left: l.node, right: r.node, op: op, shape: shape},
		shape: shape,
		feats: fCompound,
	}
}

// Union combines two queries, deduplicating rows.
func (q *Query) Union(other *Query) *Query { return q.compound(other, opUnion) }

// UnionAll combines two queries, keeping duplicates.
func (q *Query) UnionAll(other *Query) *Query { return q.compound(other, opUnionAll) }

// Intersect keeps rows present in both queries.
func (q *Query) Intersect(other *Query) *Query { return q.compound(other, opIntersect) }

// Except keeps rows of the left query absent from the right.
func (q *Query) Except(other *Query) *Query { return q.compound(other, opExcept) }

func (op compoundOp) keyword() string {
	switch op {
	case opUnion:
		return "UNION"
	case opUnionAll:
		return "UNION ALL"
	case opIntersect:
		return "INTERSECT"
	case opExcept:
		return "EXCEPT"
	default:
		panic(ConsistencyError{Detail: fmt.Sprintf("unknown compound operator %d", int(op))})
	}
}
