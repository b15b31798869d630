package relq

import "fmt"

// exprKind discriminates the closed set of expression node variants.
type exprKind int

const (
	exprColumn exprKind = iota
	exprLit
	exprBinary
	exprNot
	exprNullTest
	exprIn
	exprFunc
	exprTrimChars
	exprCast
	exprAgg
	exprCountAll
	exprOption
)

// columnRef names a column of a table reference. A nil table means the name
// renders unqualified: either a bare physical column (DML statements) or a
// generated result label (compound operands).
type columnRef struct {
	table     *TableRef
	name      string
	generated bool // generated label, exempt from identifier folding
}

// exprNode is one immutable node of the expression tree. Nodes are compared
// by pointer identity throughout the compiler: two textually identical
// expressions built independently are distinct nodes.
type exprNode struct {
	kind     exprKind
	typ      Type
	nullable bool
	agg      bool
	grouped  bool // self-parenthesizing binary (AND/OR)
	op       string
	args     []*exprNode
	col      *columnRef
	lit      any
	castTo   Type
}

// Expr is a typed scalar computation or column reference. It renders lazily
// against a per-compile context; it carries no SQL text of its own.
type Expr struct {
	n *exprNode
}

func (e Expr) valid() bool { return e.n != nil }

// TypeOf returns the declared type of the expression.
func (e Expr) TypeOf() Type {
	mustValid(e)
	return e.n.typ
}

func mustValid(exprs ...Expr) {
	for _, e := range exprs {
		if e.n == nil {
			panic(fmt.Errorf("nil expression operand"))
		}
	}
}

// TryLit creates a bound literal expression, returning an error if the value
// has no registered type mapping. Literals always bind as parameters; they
// are never inlined into SQL text.
func TryLit(v any) (Expr, error) {
	t, err := litType(v)
	if err != nil {
		return Expr{}, err
	}
	return Expr{&exprNode{kind: exprLit, typ: t, lit: v}}, nil
}

// Lit creates a bound literal expression. It panics if the value has no
// registered type mapping.
func Lit(v any) Expr {
	e, err := TryLit(v)
	if err != nil {
		panic(err)
	}
	return e
}

func newColumnExpr(table *TableRef, name string, typ Type, nullable bool) Expr {
	n := &exprNode{kind: exprColumn, typ: typ, nullable: nullable}
	n.col = &columnRef{table: table, name: name}
	return Expr{n}
}

// newLabelExpr creates a reference to a generated result label, rendered
// either bare (compound operands) or qualified by a boundary alias.
func newLabelExpr(table *TableRef, label string, typ Type, nullable bool) Expr {
	n := &exprNode{kind: exprColumn, typ: typ, nullable: nullable}
	n.col = &columnRef{table: table, name: label, generated: true}
	return Expr{n}
}

func binary(l Expr, op string, r Expr, typ Type, grouped bool) Expr {
	mustValid(l, r)
	return Expr{&exprNode{
		kind:     exprBinary,
		typ:      typ,
		nullable: l.n.nullable || r.n.nullable,
		agg:      l.n.agg || r.n.agg,
		grouped:  grouped,
		op:       op,
		args:     []*exprNode{l.n, r.n},
	}}
}

// Eq renders l = r.
func (e Expr) Eq(o Expr) Expr { return binary(e, "=", o, TBool, false) }

// Ne renders l != r.
func (e Expr) Ne(o Expr) Expr { return binary(e, "!=", o, TBool, false) }

// Gt renders l > r.
func (e Expr) Gt(o Expr) Expr { return binary(e, ">", o, TBool, false) }

// Ge renders l >= r.
func (e Expr) Ge(o Expr) Expr { return binary(e, ">=", o, TBool, false) }

// Lt renders l < r.
func (e Expr) Lt(o Expr) Expr { return binary(e, "<", o, TBool, false) }

// Le renders l <= r.
func (e Expr) Le(o Expr) Expr { return binary(e, "<=", o, TBool, false) }

// And combines two boolean expressions; the result is parenthesized.
func (e Expr) And(o Expr) Expr { return binary(e, "AND", o, TBool, true) }

// Or combines two boolean expressions; the result is parenthesized.
func (e Expr) Or(o Expr) Expr { return binary(e, "OR", o, TBool, true) }

// Add renders l + r.
func (e Expr) Add(o Expr) Expr { return binary(e, "+", o, e.TypeOf(), false) }

// Sub renders l - r.
func (e Expr) Sub(o Expr) Expr { return binary(e, "-", o, e.TypeOf(), false) }

// Mul renders l * r.
func (e Expr) Mul(o Expr) Expr { return binary(e, "*", o, e.TypeOf(), false) }

// Div renders l / r.
func (e Expr) Div(o Expr) Expr { return binary(e, "/", o, e.TypeOf(), false) }

// Like renders l LIKE r.
func (e Expr) Like(o Expr) Expr { return binary(e, "LIKE", o, TBool, false) }

// Not negates a boolean expression.
func (e Expr) Not() Expr {
	mustValid(e)
	return Expr{&exprNode{kind: exprNot, typ: TBool, agg: e.n.agg, args: []*exprNode{e.n}}}
}

// IsNull renders e IS NULL.
func (e Expr) IsNull() Expr {
	mustValid(e)
	return Expr{&exprNode{kind: exprNullTest, typ: TBool, op: "IS NULL", args: []*exprNode{e.n}}}
}

// IsNotNull renders e IS NOT NULL.
func (e Expr) IsNotNull() Expr {
	mustValid(e)
	return Expr{&exprNode{kind: exprNullTest, typ: TBool, op: "IS NOT NULL", args: []*exprNode{e.n}}}
}

// In renders e IN (v, v, ...). At least one candidate is required.
func (e Expr) In(vals ...Expr) Expr {
	mustValid(e)
	if len(vals) == 0 {
		panic(fmt.Errorf("IN requires at least one candidate value"))
	}
	args := make([]*exprNode, 0, len(vals)+1)
	args = append(args, e.n)
	agg := e.n.agg
	for _, v := range vals {
		mustValid(v)
		args = append(args, v.n)
		agg = agg || v.n.agg
	}
	return Expr{&exprNode{kind: exprIn, typ: TBool, agg: agg, args: args}}
}

func scalarFunc(name string, typ Type, args ...Expr) Expr {
	mustValid(args...)
	nodes := make([]*exprNode, len(args))
	nullable, agg := false, false
	for i, a := range args {
		nodes[i] = a.n
		nullable = nullable || a.n.nullable
		agg = agg || a.n.agg
	}
	return Expr{&exprNode{kind: exprFunc, typ: typ, nullable: nullable, agg: agg, op: name, args: nodes}}
}

// Lower renders LOWER(e).
func Lower(e Expr) Expr { return scalarFunc("LOWER", TString, e) }

// Upper renders UPPER(e).
func Upper(e Expr) Expr { return scalarFunc("UPPER", TString, e) }

// Length renders LENGTH(e).
func Length(e Expr) Expr { return scalarFunc("LENGTH", TInt, e) }

// Trim renders TRIM(e).
func Trim(e Expr) Expr { return scalarFunc("TRIM", TString, e) }

// TrimChars trims the given characters from both ends of e. The spelling is
// dialect-dependent: TRIM(BOTH chars FROM e) or TRIM(e, chars).
func TrimChars(e, chars Expr) Expr {
	mustValid(e, chars)
	return Expr{&exprNode{kind: exprTrimChars, typ: TString, nullable: e.n.nullable, args: []*exprNode{e.n, chars.n}}}
}

// Coalesce renders COALESCE(a, b, ...). The result is non-nullable only when
// every argument is.
func Coalesce(args ...Expr) Expr {
	if len(args) < 2 {
		panic(fmt.Errorf("COALESCE requires at least two arguments"))
	}
	mustValid(args...)
	nodes := make([]*exprNode, len(args))
	nullable := true
	agg := false
	for i, a := range args {
		nodes[i] = a.n
		nullable = nullable && a.n.nullable
		agg = agg || a.n.agg
	}
	return Expr{&exprNode{kind: exprFunc, typ: args[0].n.typ, nullable: nullable, agg: agg, op: "COALESCE", args: nodes}}
}

// Cast renders CAST(e AS t) using the dialect's name for t.
func Cast(e Expr, t Type) Expr {
	mustValid(e)
	return Expr{&exprNode{kind: exprCast, typ: t, nullable: e.n.nullable, agg: e.n.agg, args: []*exprNode{e.n}, castTo: t}}
}

// optionExpr wraps an expression as nullable without changing how it renders.
// The wrapper keeps its own identity but depends on the original node, so
// liveness tracking still reaches the underlying column.
func optionExpr(e Expr) Expr {
	mustValid(e)
	return Expr{&exprNode{kind: exprOption, typ: e.n.typ, nullable: true, agg: e.n.agg, args: []*exprNode{e.n}}}
}
