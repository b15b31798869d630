package relq

import "fmt"

// Shape is the output form of a query: a single expression, a positional
// tuple, or a named record, nested arbitrarily. Shapes flatten to unique
// generated column labels (res, res__<idx>, res__<field>, composed when
// nested) in the emitted SELECT list.
type Shape interface {
	isShape()
}

func (Expr) isShape() {}

// RecField is one named field of a Record shape.
type RecField struct {
	Name  string
	Value Shape
}

// Fld pairs a field name with its shape.
func Fld(name string, value Shape) RecField {
	return RecField{Name: name, Value: value}
}

// Record is an ordered named-field shape.
type Record struct {
	fields []RecField
}

// Rec builds a record shape from ordered fields.
func Rec(fields ...RecField) *Record {
	return &Record{fields: fields}
}

func (*Record) isShape() {}

// Field returns the shape of the named field.
func (r *Record) Field(name string) Shape {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value
		}
	}
	panic(fmt.Errorf("record has no field %q", name))
}

// Col returns the named field as an expression. It panics if the field is
// not a primitive shape.
func (r *Record) Col(name string) Expr {
	f := r.Field(name)
	e, ok := f.(Expr)
	if !ok {
		panic(fmt.Errorf("record field %q is not a scalar expression", name))
	}
	return e
}

// Names returns the field names in order.
func (r *Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Tuple is an ordered positional shape.
type Tuple struct {
	items []Shape
}

// Tup builds a tuple shape from ordered items.
func Tup(items ...Shape) *Tuple {
	return &Tuple{items: items}
}

func (*Tuple) isShape() {}

// Len returns the number of tuple positions.
func (t *Tuple) Len() int { return len(t.items) }

// At returns the shape at position i.
func (t *Tuple) At(i int) Shape {
	if i < 0 || i >= len(t.items) {
		panic(fmt.Errorf("tuple index %d out of range [0,%d)", i, len(t.items)))
	}
	return t.items[i]
}

// ExprAt returns the expression at position i. It panics if the position is
// not a primitive shape.
func (t *Tuple) ExprAt(i int) Expr {
	e, ok := t.At(i).(Expr)
	if !ok {
		panic(fmt.Errorf("tuple position %d is not a scalar expression", i))
	}
	return e
}

// shapeCol is one flattened output column of a shape.
type shapeCol struct {
	label    string
	expr     Expr
	nullable bool
}

// flattenShape flattens a shape into its ordered labelled columns.
func flattenShape(s Shape) []shapeCol {
	var out []shapeCol
	flattenInto(s, "res", false, &out)
	return out
}

func flattenInto(s Shape, label string, nullable bool, out *[]shapeCol) {
	switch v := s.(type) {
	case Expr:
		mustValid(v)
		*out = append(*out, shapeCol{label: label, expr: v, nullable: nullable || v.n.nullable})
	case *Record:
		for _, f := range v.fields {
			flattenInto(f.Value, label+"__"+f.Name, nullable, out)
		}
	case *Tuple:
		for i, item := range v.items {
			flattenInto(item, fmt.Sprintf("%s__%d", label, i), nullable, out)
		}
	case *Nullable:
		flattenInto(v.inner, label, true, out)
	default:
		panic(fmt.Errorf("unknown shape %T", s))
	}
}

func shapeWidth(s Shape) int {
	return len(flattenShape(s))
}

// rebindShape rebuilds a shape substituting every leaf expression through f.
func rebindShape(s Shape, f func(Expr) Expr) Shape {
	switch v := s.(type) {
	case Expr:
		return f(v)
	case *Record:
		fields := make([]RecField, len(v.fields))
		for i, fld := range v.fields {
			fields[i] = RecField{Name: fld.Name, Value: rebindShape(fld.Value, f)}
		}
		return &Record{fields: fields}
	case *Tuple:
		items := make([]Shape, len(v.items))
		for i, item := range v.items {
			items[i] = rebindShape(item, f)
		}
		return &Tuple{items: items}
	case *Nullable:
		return &Nullable{inner: rebindShape(v.inner, f), probe: f(v.probe)}
	default:
		panic(fmt.Errorf("unknown shape %T", s))
	}
}

// ColOf returns the named column of a record or nullable-record shape.
func ColOf(s Shape, name string) Expr {
	switch v := s.(type) {
	case *Record:
		return v.Col(name)
	case *Nullable:
		return v.Col(name)
	default:
		panic(fmt.Errorf("shape %T has no named columns", s))
	}
}

// At returns the shape at position i of a tuple shape.
func At(s Shape, i int) Shape {
	t, ok := s.(*Tuple)
	if !ok {
		panic(fmt.Errorf("shape %T has no positional items", s))
	}
	return t.At(i)
}

// AsExpr asserts that a shape is a single expression.
func AsExpr(s Shape) Expr {
	switch v := s.(type) {
	case Expr:
		return v
	case *Nullable:
		return v.AsExpr()
	default:
		panic(fmt.Errorf("shape %T is not a scalar expression", s))
	}
}
