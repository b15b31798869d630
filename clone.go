package relq

// cloner rebuilds a plan with fresh table references and fresh expression
// identities. Joining a query against itself needs two independent copies,
// since one reference cannot carry two aliases in one statement.
type cloner struct {
	refs  map[*TableRef]*TableRef
	exprs map[*exprNode]*exprNode
}

func cloneQuery(q *Query) *Query {
	c := &cloner{
		refs:  make(map[*TableRef]*TableRef),
		exprs: make(map[*exprNode]*exprNode),
	}
	return &Query{
		node:  c.plan(q.node),
		shape: c.shape(q.shape),
		feats: q.feats,
	}
}

func (c *cloner) ref(r *TableRef) *TableRef {
	if r == nil {
		return nil
	}
	if out, ok := c.refs[r]; ok {
		return out
	}
	out := &TableRef{name: r.name, generated: r.generated}
	c.refs[r] = out
	return out
}

func (c *cloner) expr(n *exprNode) *exprNode {
	if n == nil {
		return nil
	}
	if out, ok := c.exprs[n]; ok {
		return out
	}
	out := &exprNode{
		kind:     n.kind,
		typ:      n.typ,
		nullable: n.nullable,
		agg:      n.agg,
		grouped:  n.grouped,
		op:       n.op,
		lit:      n.lit,
		castTo:   n.castTo,
	}
	c.exprs[n] = out
	if n.col != nil {
		out.col = &columnRef{table: c.ref(n.col.table), name: n.col.name, generated: n.col.generated}
	}
	if len(n.args) > 0 {
		out.args = make([]*exprNode, len(n.args))
		for i, a := range n.args {
			out.args[i] = c.expr(a)
		}
	}
	return out
}

func (c *cloner) exprValue(e Expr) Expr {
	return Expr{c.expr(e.n)}
}

func (c *cloner) shape(s Shape) Shape {
	return rebindShape(s, c.exprValue)
}

func (c *cloner) plan(n planNode) planNode {
	switch t := n.(type) {
	case *scanNode:
		return &scanNode{ref: c.ref(t.ref), table: t.table, shape: c.shape(t.shape)}
	case *valuesNode:
		return &valuesNode{ref: c.ref(t.ref), names: t.names, types: t.types, rows: t.rows, shape: c.shape(t.shape)}
	case *filterNode:
		return &filterNode{src: c.plan(t.src), pred: c.exprValue(t.pred)}
	case *mapNode:
		return &mapNode{src: c.plan(t.src), shape: c.shape(t.shape)}
	case *sortNode:
		key := sortKey{expr: c.exprValue(t.key.expr), desc: t.key.desc, nulls: t.key.nulls}
		return &sortNode{src: c.plan(t.src), key: key}
	case *takeNode:
		return &takeNode{src: c.plan(t.src), n: t.n}
	case *dropNode:
		return &dropNode{src: c.plan(t.src), n: t.n}
	case *groupNode:
		return &groupNode{src: c.plan(t.src), key: c.shape(t.key), shape: c.shape(t.shape)}
	case *aggNode:
		return &aggNode{src: c.plan(t.src), shape: c.shape(t.shape)}
	case *joinNode:
		out := &joinNode{left: c.plan(t.left), right: c.plan(t.right), kind: t.kind, shape: c.shape(t.shape)}
		if t.on.valid() {
			out.on = c.exprValue(t.on)
		}
		return out
	case *compoundNode:
		return &compoundNode{left: c.plan(t.left), right: c.plan(t.right), op: t.op, shape: c.shape(t.shape)}
	case *boxNode:
		entries := make([]boundaryEntry, len(t.entries))
		for i, e := range t.entries {
			entries[i] = boundaryEntry{label: e.label, inner: c.expr(e.inner), outer: c.expr(e.outer)}
		}
		return &boxNode{src: c.plan(t.src), ref: c.ref(t.ref), entries: entries, shape: c.shape(t.shape)}
	default:
		panic(ConsistencyError{Detail: "unknown plan node in clone"})
	}
}
