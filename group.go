package relq

import "fmt"

func aggregate(name string, typ Type, e Expr) Expr {
	mustValid(e)
	if e.n.agg {
		panic(fmt.Errorf("cannot nest aggregate expressions"))
	}
	return Expr{&exprNode{kind: exprAgg, typ: typ, agg: true, op: name, args: []*exprNode{e.n}}}
}

// Sum renders SUM(e).
func Sum(e Expr) Expr { return aggregate("SUM", e.TypeOf(), e) }

// Avg renders AVG(e).
func Avg(e Expr) Expr { return aggregate("AVG", TFloat, e) }

// Min renders MIN(e).
func Min(e Expr) Expr { return aggregate("MIN", e.TypeOf(), e) }

// Max renders MAX(e).
func Max(e Expr) Expr { return aggregate("MAX", e.TypeOf(), e) }

// Count renders COUNT(e).
func Count(e Expr) Expr { return aggregate("COUNT", TInt, e) }

// CountAll renders COUNT(*).
func CountAll() Expr {
	return Expr{&exprNode{kind: exprCountAll, typ: TInt, agg: true}}
}

func checkAggShape(s Shape) ([]shapeCol, error) {
	if s == nil {
		return nil, fmt.Errorf("aggregate shape is nil")
	}
	cols := flattenShape(s)
	if len(cols) == 0 {
		return nil, fmt.Errorf("aggregate shape is empty")
	}
	for _, c := range cols {
		if !c.expr.n.agg {
			return nil, fmt.Errorf("aggregate shape entry %q is not an aggregate expression", c.label)
		}
	}
	return cols, nil
}

func (q *Query) groupSource() *Query {
	if q.feats&(fOrdered|fLimited|fGrouped|fAggregated|fCompound) != 0 {
		return boxQuery(q)
	}
	return q
}

// GroupBy groups rows by a key shape and computes aggregates per group. The
// result shape is the (key, aggregates) tuple. Grouping over an already
// ordered, limited, grouped, or compound chain boxes it first.
func (q *Query) GroupBy(key func(Shape) Shape, aggs func(Shape) Shape) *Query {
	if q.err != nil {
		return q
	}
	src := q.groupSource()
	k := key(src.shape)
	if k == nil {
		return q.fail("grouping key shape is nil")
	}
	keyCols := flattenShape(k)
	if len(keyCols) == 0 {
		return q.fail("grouping key shape is empty")
	}
	for _, c := range keyCols {
		if c.expr.n.agg {
			return q.fail("grouping key %q cannot be an aggregate expression", c.label)
		}
	}
	a := aggs(src.shape)
	if _, err := checkAggShape(a); err != nil {
		return q.fail("group aggregates: %v", err)
	}
	shape := Tup(k, a)
	return &Query{
		node:  &groupNode{src: src.node, key: k, shape: shape},
		shape: shape,
		feats: fGrouped,
	}
}

// Aggregate collapses the chain to a single row of aggregate values with no
// grouping key.
func (q *Query) Aggregate(aggs func(Shape) Shape) *Query {
	if q.err != nil {
		return q
	}
	src := q.groupSource()
	a := aggs(src.shape)
	if _, err := checkAggShape(a); err != nil {
		return q.fail("aggregate: %v", err)
	}
	return &Query{
		node:  &aggNode{src: src.node, shape: a},
		shape: a,
		feats: fAggregated,
	}
}
