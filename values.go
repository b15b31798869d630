package relq

import "fmt"

// Values treats a fixed in-memory sequence of rows as a queryable relation.
// Every row must match the declared column arity and types; violations are
// construction errors carried on the returned chain. Each value binds as a
// parameter.
func Values(names []string, types []Type, rows ...[]any) *Query {
	bad := func(format string, args ...any) *Query {
		return &Query{err: fmt.Errorf(format, args...)}
	}
	if len(names) == 0 {
		return bad("values relation needs at least one column")
	}
	if len(names) != len(types) {
		return bad("values relation: %d column names for %d types", len(names), len(types))
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return bad("values relation column name cannot be empty")
		}
		if seen[name] {
			return bad("values relation: duplicate column %q", name)
		}
		seen[name] = true
	}
	if len(rows) == 0 {
		return bad("values relation needs at least one row")
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return &Query{err: ArityError{What: fmt.Sprintf("values row %d", i), Want: len(names), Got: len(row)}}
		}
		for j, v := range row {
			t, err := litType(v)
			if err != nil {
				return bad("values row %d column %q: %v", i, names[j], err)
			}
			if t != types[j] {
				return bad("values row %d column %q: expected %s, got %s value", i, names[j], types[j], t)
			}
		}
	}

	// Column names here are caller-invented relation labels, not physical
	// identifiers, so they stay exempt from dialect identifier folding.
	ref := &TableRef{name: "values", generated: true}
	fields := make([]RecField, len(names))
	for i, name := range names {
		fields[i] = Fld(name, newLabelExpr(ref, name, types[i], false))
	}
	shape := Rec(fields...)
	return &Query{
		node:  &valuesNode{ref: ref, names: names, types: types, rows: rows, shape: shape},
		shape: shape,
	}
}
