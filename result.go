package relq

import "fmt"

// Column describes one output column of a compiled query in SELECT-list
// order.
type Column struct {
	Label    string
	Type     Type
	Nullable bool
}

// Compiled is the result of compiling a statement for a dialect: the SQL
// text, the bound parameter values in placeholder order, and for queries the
// output column descriptions plus a reconstruction plan mapping flat result
// rows back onto the query's shape.
type Compiled struct {
	SQL     string
	Args    []any
	Columns []Column

	plan reconPlan
}

// reconPlan rebuilds one structured value from a flat row slice.
type reconPlan interface {
	build(row []any) any
}

type reconScalar struct {
	idx int
}

type reconTuple struct {
	items []reconPlan
}

type reconRecord struct {
	names []string
	items []reconPlan
}

// reconNullable yields nil when the probe column is NULL, since every column
// of an unmatched optional join side comes back NULL.
type reconNullable struct {
	probe int
	inner reconPlan
}

func (p reconScalar) build(row []any) any {
	return row[p.idx]
}

func (p reconTuple) build(row []any) any {
	out := make([]any, len(p.items))
	for i, item := range p.items {
		out[i] = item.build(row)
	}
	return out
}

func (p reconRecord) build(row []any) any {
	out := make(map[string]any, len(p.items))
	for i, item := range p.items {
		out[p.names[i]] = item.build(row)
	}
	return out
}

func (p reconNullable) build(row []any) any {
	if row[p.probe] == nil {
		return nil
	}
	return p.inner.build(row)
}

// Reconstruct maps one flat result row onto the query's shape: records
// become map[string]any, tuples become []any, scalars pass through, and an
// unmatched optional join side becomes nil. The row must have one value per
// output column, in Columns order.
func (c *Compiled) Reconstruct(row []any) (any, error) {
	if c.plan == nil {
		return nil, ConsistencyError{Detail: "statement produces no rows"}
	}
	if len(row) != len(c.Columns) {
		return nil, ArityError{What: "result row", Want: len(c.Columns), Got: len(row)}
	}
	return c.plan.build(row), nil
}

// describeShape walks a shape in flattening order, producing the output
// column descriptions and the matching reconstruction plan.
func describeShape(s Shape) ([]Column, reconPlan) {
	d := &describer{}
	plan := d.walk(s, "res", false)
	return d.cols, plan
}

type describer struct {
	cols []Column
	idx  map[*exprNode]int
}

func (d *describer) walk(s Shape, label string, nullable bool) reconPlan {
	switch v := s.(type) {
	case Expr:
		i := len(d.cols)
		d.cols = append(d.cols, Column{Label: label, Type: v.n.typ, Nullable: nullable || v.n.nullable})
		if d.idx == nil {
			d.idx = make(map[*exprNode]int)
		}
		d.idx[v.n] = i
		return reconScalar{idx: i}

	case *Record:
		names := make([]string, len(v.fields))
		items := make([]reconPlan, len(v.fields))
		for i, f := range v.fields {
			names[i] = f.Name
			items[i] = d.walk(f.Value, label+"__"+f.Name, nullable)
		}
		return reconRecord{names: names, items: items}

	case *Tuple:
		items := make([]reconPlan, len(v.items))
		for i, item := range v.items {
			items[i] = d.walk(item, fmt.Sprintf("%s__%d", label, i), nullable)
		}
		return reconTuple{items: items}

	case *Nullable:
		inner := d.walk(v.inner, label, true)
		probe, ok := d.idx[v.probe.n]
		if !ok {
			panic(ConsistencyError{Detail: "optional join probe column is not part of the output shape"})
		}
		return reconNullable{probe: probe, inner: inner}

	default:
		panic(fmt.Errorf("unknown shape %T", s))
	}
}
