package relq

import "fmt"

// The lowering pass converts the operation chain into renderable statement
// blocks. Boxing decisions were already made at construction time (boxNode
// insertion); lowering folds the remaining operations into SELECT blocks,
// liveness pruning then narrows each boundary's projection to the columns
// referenced above it, and alias assignment numbers exactly the reachable
// relations in reading order.

// stmt is a renderable statement: a single SELECT block or a compound.
type stmt interface {
	isStmt()
}

// source is a FROM/JOIN relation: a physical table, a values relation, or a
// subquery boundary.
type source interface {
	isSource()
}

type tableSrc struct {
	ref  *TableRef
	name string
}

type valuesSrc struct {
	node *valuesNode
}

type subquerySrc struct {
	box   *boxNode
	inner stmt
}

func (*tableSrc) isSource()    {}
func (*valuesSrc) isSource()   {}
func (*subquerySrc) isSource() {}

type joinPart struct {
	kind joinKind
	src  source
	on   Expr
}

type selectBlock struct {
	from       source
	joins      []joinPart
	where      []Expr
	groupBy    []Expr
	selectList []shapeCol
	orderBy    []sortKey
	limit      *int
	offset     *int
}

type compoundStmt struct {
	op      compoundOp
	node    *compoundNode
	left    stmt
	right   stmt
	orderBy []sortKey
	limit   *int
	offset  *int
}

func (*selectBlock) isStmt()  {}
func (*compoundStmt) isStmt() {}

func walkExprNodes(n *exprNode, f func(*exprNode)) {
	f(n)
	for _, a := range n.args {
		walkExprNodes(a, f)
	}
}

// lower folds an operation chain into statement blocks. Construction
// guarantees every operation lands on a block it can legally extend; a
// violation here is a compiler bug, not a user error.
func lower(n planNode) (stmt, error) {
	switch t := n.(type) {
	case *scanNode:
		return &selectBlock{
			from:       &tableSrc{ref: t.ref, name: t.table.name},
			selectList: flattenShape(t.shape),
		}, nil

	case *valuesNode:
		return &selectBlock{
			from:       &valuesSrc{node: t},
			selectList: flattenShape(t.shape),
		}, nil

	case *boxNode:
		inner, err := lower(t.src)
		if err != nil {
			return nil, err
		}
		return &selectBlock{
			from:       &subquerySrc{box: t, inner: inner},
			selectList: flattenShape(t.shape),
		}, nil

	case *filterNode:
		b, err := lowerBlock(t.src)
		if err != nil {
			return nil, err
		}
		b.where = append(b.where, t.pred)
		return b, nil

	case *mapNode:
		b, err := lowerBlock(t.src)
		if err != nil {
			return nil, err
		}
		b.selectList = flattenShape(t.shape)
		return b, nil

	case *sortNode:
		s, err := lower(t.src)
		if err != nil {
			return nil, err
		}
		switch b := s.(type) {
		case *selectBlock:
			b.orderBy = append([]sortKey{t.key}, b.orderBy...)
		case *compoundStmt:
			b.orderBy = append([]sortKey{t.key}, b.orderBy...)
		}
		return s, nil

	case *takeNode:
		s, err := lower(t.src)
		if err != nil {
			return nil, err
		}
		switch b := s.(type) {
		case *selectBlock:
			applyTake(&b.limit, t.n)
		case *compoundStmt:
			applyTake(&b.limit, t.n)
		}
		return s, nil

	case *dropNode:
		s, err := lower(t.src)
		if err != nil {
			return nil, err
		}
		switch b := s.(type) {
		case *selectBlock:
			applyDrop(&b.limit, &b.offset, t.n)
		case *compoundStmt:
			applyDrop(&b.limit, &b.offset, t.n)
		}
		return s, nil

	case *groupNode:
		b, err := lowerBlock(t.src)
		if err != nil {
			return nil, err
		}
		for _, c := range flattenShape(t.key) {
			b.groupBy = append(b.groupBy, c.expr)
		}
		b.selectList = flattenShape(t.shape)
		return b, nil

	case *aggNode:
		b, err := lowerBlock(t.src)
		if err != nil {
			return nil, err
		}
		b.selectList = flattenShape(t.shape)
		return b, nil

	case *joinNode:
		b, err := lowerBlock(t.left)
		if err != nil {
			return nil, err
		}
		src, err := lowerSource(t.right)
		if err != nil {
			return nil, err
		}
		b.joins = append(b.joins, joinPart{kind: t.kind, src: src, on: t.on})
		b.selectList = flattenShape(t.shape)
		return b, nil

	case *compoundNode:
		left, err := lower(t.left)
		if err != nil {
			return nil, err
		}
		right, err := lower(t.right)
		if err != nil {
			return nil, err
		}
		return &compoundStmt{op: t.op, node: t, left: left, right: right}, nil

	default:
		return nil, ConsistencyError{Detail: "unknown plan node in lowering"}
	}
}

func lowerBlock(n planNode) (*selectBlock, error) {
	s, err := lower(n)
	if err != nil {
		return nil, err
	}
	b, ok := s.(*selectBlock)
	if !ok {
		return nil, ConsistencyError{Detail: "operation applied to a compound without boxing"}
	}
	return b, nil
}

// lowerSource lowers a join right side, which construction restricted to a
// bare relation or a boundary.
func lowerSource(n planNode) (source, error) {
	switch t := n.(type) {
	case *scanNode:
		return &tableSrc{ref: t.ref, name: t.table.name}, nil
	case *valuesNode:
		return &valuesSrc{node: t}, nil
	case *boxNode:
		inner, err := lower(t.src)
		if err != nil {
			return nil, err
		}
		return &subquerySrc{box: t, inner: inner}, nil
	default:
		return nil, ConsistencyError{Detail: "join right side is neither a bare relation nor a boundary"}
	}
}

func applyTake(limit **int, n int) {
	if *limit == nil || **limit > n {
		v := n
		*limit = &v
	}
}

func applyDrop(limit, offset **int, n int) {
	if n == 0 {
		return
	}
	base := 0
	if *offset != nil {
		base = **offset
	}
	v := base + n
	*offset = &v
	if *limit != nil {
		l := **limit - n
		if l < 0 {
			l = 0
		}
		*limit = &l
	}
}

// pruneStmt applies liveness pruning top-down. keep is the positional mask a
// consuming boundary computed for this statement's projection; nil keeps the
// full projection (the outer statement).
func pruneStmt(s stmt, keep []bool) {
	switch b := s.(type) {
	case *selectBlock:
		if keep != nil {
			kept := make([]shapeCol, 0, len(b.selectList))
			for i, c := range b.selectList {
				if i < len(keep) && keep[i] {
					kept = append(kept, c)
				}
			}
			if len(kept) == 0 && len(b.selectList) > 0 {
				kept = append(kept, b.selectList[0])
			}
			b.selectList = kept
		}

		used := make(map[*exprNode]bool)
		mark := func(e Expr) {
			walkExprNodes(e.n, func(n *exprNode) { used[n] = true })
		}
		for _, c := range b.selectList {
			mark(c.expr)
		}
		for _, w := range b.where {
			mark(w)
		}
		for _, j := range b.joins {
			if j.on.valid() {
				mark(j.on)
			}
		}
		for _, g := range b.groupBy {
			mark(g)
		}
		for _, k := range b.orderBy {
			mark(k.expr)
		}

		pruneSource(b.from, used)
		for _, j := range b.joins {
			pruneSource(j.src, used)
		}

	case *compoundStmt:
		width := len(b.node.entriesFlat())
		mask := make([]bool, width)
		if keep == nil {
			for i := range mask {
				mask[i] = true
			}
		} else {
			copy(mask, keep)
		}
		// The compound's own ORDER BY references result labels; those stay
		// projected even when the consumer does not need them.
		labels := b.node.entriesFlat()
		for _, k := range b.orderBy {
			walkExprNodes(k.expr.n, func(n *exprNode) {
				for i, l := range labels {
					if l.expr.n == n {
						mask[i] = true
					}
				}
			})
		}
		any := false
		for _, m := range mask {
			any = any || m
		}
		if !any && width > 0 {
			mask[0] = true
		}
		pruneStmt(b.left, mask)
		pruneStmt(b.right, mask)
	}
}

// entriesFlat returns the compound's result-label columns in position order.
func (n *compoundNode) entriesFlat() []shapeCol {
	return flattenShape(n.shape)
}

func pruneSource(src source, used map[*exprNode]bool) {
	sq, ok := src.(*subquerySrc)
	if !ok {
		return
	}
	keep := make([]bool, len(sq.box.entries))
	any := false
	for i, e := range sq.box.entries {
		keep[i] = used[e.outer]
		any = any || keep[i]
	}
	if !any && len(keep) > 0 {
		keep[0] = true
	}
	pruneStmt(sq.inner, keep)
}

// validateScopes checks that every expression a statement block uses resolves
// to a relation in that block's own FROM/JOIN list. Aliases are registered
// globally per compile, so without this check a column captured before a
// subquery boundary would render the inner block's alias inside the outer
// statement.
func validateScopes(s stmt) error {
	switch b := s.(type) {
	case *selectBlock:
		visible := make(map[*TableRef]bool)
		sourceRef(b.from, visible)
		for _, j := range b.joins {
			sourceRef(j.src, visible)
		}
		for _, c := range b.selectList {
			if err := checkScope(c.expr, visible); err != nil {
				return err
			}
		}
		for _, p := range b.where {
			if err := checkScope(p, visible); err != nil {
				return err
			}
		}
		for _, j := range b.joins {
			if j.on.valid() {
				if err := checkScope(j.on, visible); err != nil {
					return err
				}
			}
		}
		for _, g := range b.groupBy {
			if err := checkScope(g, visible); err != nil {
				return err
			}
		}
		for _, k := range b.orderBy {
			if err := checkScope(k.expr, visible); err != nil {
				return err
			}
		}
		if err := validateSource(b.from); err != nil {
			return err
		}
		for _, j := range b.joins {
			if err := validateSource(j.src); err != nil {
				return err
			}
		}
		return nil

	case *compoundStmt:
		// The compound's own sort keys resolve against bare result labels;
		// any table-qualified reference here leaked across the operands.
		for _, k := range b.orderBy {
			if err := checkScope(k.expr, nil); err != nil {
				return err
			}
		}
		if err := validateScopes(b.left); err != nil {
			return err
		}
		return validateScopes(b.right)
	}
	return nil
}

func sourceRef(src source, out map[*TableRef]bool) {
	switch t := src.(type) {
	case *tableSrc:
		out[t.ref] = true
	case *valuesSrc:
		out[t.node.ref] = true
	case *subquerySrc:
		out[t.box.ref] = true
	}
}

func validateSource(src source) error {
	if sq, ok := src.(*subquerySrc); ok {
		return validateScopes(sq.inner)
	}
	return nil
}

func checkScope(e Expr, visible map[*TableRef]bool) error {
	var bad *columnRef
	walkExprNodes(e.n, func(n *exprNode) {
		if bad == nil && n.kind == exprColumn && n.col.table != nil && !visible[n.col.table] {
			bad = n.col
		}
	})
	if bad != nil {
		return ConsistencyError{Detail: fmt.Sprintf(
			"column %q of relation %q is not in scope; the expression was captured from a shape that a subquery boundary replaced",
			bad.name, bad.table.name)}
	}
	return nil
}

// assignAliases numbers the relations of the pruned statement in a single
// left-to-right, outside-in traversal matching how the statement reads.
func assignAliases(s stmt, ctx *Context) {
	switch b := s.(type) {
	case *selectBlock:
		assignSource(b.from, ctx)
		for _, j := range b.joins {
			assignSource(j.src, ctx)
		}
	case *compoundStmt:
		assignAliases(b.left, ctx)
		assignAliases(b.right, ctx)
	}
}

func assignSource(src source, ctx *Context) {
	switch t := src.(type) {
	case *tableSrc:
		ctx.register(t.ref)
	case *valuesSrc:
		ctx.register(t.node.ref)
	case *subquerySrc:
		ctx.register(t.box.ref)
		assignAliases(t.inner, ctx)
	}
}
