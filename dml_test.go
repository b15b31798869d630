package relq

import (
	"reflect"
	"testing"
)

func TestInsertValues_Basic(t *testing.T) {
	tbl := testTable()
	st := InsertValues(tbl,
		Set("id", Lit(1)),
		Set("x", Lit(5)),
	)
	c, err := st.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	expected := "INSERT INTO t (id, x) VALUES (?, ?)"
	if c.SQL != expected {
		t.Errorf("SQL = %q, want %q", c.SQL, expected)
	}
	if !reflect.DeepEqual(c.Args, []any{1, 5}) {
		t.Errorf("Args = %v, want [1 5]", c.Args)
	}
}

func TestInsertValues_ComputedValue(t *testing.T) {
	tbl := testTable()
	st := InsertValues(tbl, Set("x", Lit(2).Mul(Lit(3))))
	c, err := st.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	expected := "INSERT INTO t (x) VALUES (? * ?)"
	if c.SQL != expected {
		t.Errorf("SQL = %q, want %q", c.SQL, expected)
	}
}

func TestInsertValues_Errors(t *testing.T) {
	tbl := testTable()
	tests := []struct {
		name string
		sets []Assignment
	}{
		{"no assignments", nil},
		{"unknown column", []Assignment{Set("missing", Lit(1))}},
		{"duplicate column", []Assignment{Set("x", Lit(1)), Set("x", Lit(2))}},
		{"type mismatch", []Assignment{Set("x", Lit("five"))}},
		{"column reference", []Assignment{Set("x", tbl.C("id"))}},
		{"aggregate value", []Assignment{Set("x", Sum(tbl.C("id")))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := InsertValues(tbl, tt.sets...).Compile(nil); err == nil {
				t.Fatal("Expected construction error")
			}
		})
	}
}

func TestInsertBatched_Basic(t *testing.T) {
	st := InsertBatched(testTable(), []string{"id", "x"},
		[]any{1, 10},
		[]any{2, 20},
	)
	c, err := st.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	expected := "INSERT INTO t (id, x) VALUES (?, ?), (?, ?)"
	if c.SQL != expected {
		t.Errorf("SQL = %q, want %q", c.SQL, expected)
	}
	if !reflect.DeepEqual(c.Args, []any{1, 10, 2, 20}) {
		t.Errorf("Args = %v, want [1 10 2 20]", c.Args)
	}
}

func TestInsertBatched_Errors(t *testing.T) {
	tbl := testTable()
	tests := []struct {
		name string
		st   *InsertBatch
	}{
		{"no columns", InsertBatched(tbl, nil, []any{1})},
		{"unknown column", InsertBatched(tbl, []string{"missing"}, []any{1})},
		{"duplicate column", InsertBatched(tbl, []string{"x", "x"}, []any{1, 2})},
		{"no rows", InsertBatched(tbl, []string{"x"})},
		{"row arity", InsertBatched(tbl, []string{"x"}, []any{1, 2})},
		{"value type", InsertBatched(tbl, []string{"x"}, []any{"nope"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.st.Compile(nil); err == nil {
				t.Fatal("Expected construction error")
			}
		})
	}
}

func TestInsertSelect_Basic(t *testing.T) {
	tbl := testTable()
	q := From(tbl).Filter(func(r Shape) Expr {
		return ColOf(r, "x").Gt(Lit(5))
	})
	st := InsertSelect(tbl, []string{"id", "x"}, q)
	c, err := st.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	expected := "INSERT INTO t (id, x) " +
		"SELECT t0.id AS res__id, t0.x AS res__x FROM t t0 WHERE t0.x > ?"
	if c.SQL != expected {
		t.Errorf("SQL = %q, want %q", c.SQL, expected)
	}
	if !reflect.DeepEqual(c.Args, []any{5}) {
		t.Errorf("Args = %v, want [5]", c.Args)
	}
}

func TestInsertSelect_WidthMismatchFails(t *testing.T) {
	tbl := testTable()
	q := From(tbl).Map(func(r Shape) Shape { return ColOf(r, "x") })
	if _, err := InsertSelect(tbl, []string{"id", "x"}, q).Compile(nil); err == nil {
		t.Fatal("Expected error for column/width mismatch")
	}
}

func TestInsertSelect_TypeMismatchFails(t *testing.T) {
	tbl := testTable()
	q := From(tbl).Map(func(r Shape) Shape {
		return Tup(ColOf(r, "id"), Cast(ColOf(r, "x"), TString))
	})
	if _, err := InsertSelect(tbl, []string{"id", "x"}, q).Compile(nil); err == nil {
		t.Fatal("Expected error for positional type mismatch")
	}
}

func TestUpdate_ComputedAssignment(t *testing.T) {
	tbl := testTable()
	st := Update(tbl,
		tbl.C("id").Eq(Lit(7)),
		Set("x", tbl.C("x").Add(Lit(1))),
	)
	c, err := st.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	expected := "UPDATE t SET x = x + ? WHERE id = ?"
	if c.SQL != expected {
		t.Errorf("SQL = %q, want %q", c.SQL, expected)
	}
	if !reflect.DeepEqual(c.Args, []any{1, 7}) {
		t.Errorf("Args = %v, want [1 7]", c.Args)
	}
}

func TestUpdate_RequiresPredicate(t *testing.T) {
	tbl := testTable()
	if _, err := Update(tbl, Expr{}, Set("x", Lit(1))).Compile(nil); err == nil {
		t.Fatal("Expected error for missing update predicate")
	}
}

func TestUpdate_AlwaysTruePredicateBinds(t *testing.T) {
	tbl := testTable()
	st := Update(tbl, Lit(true), Set("x", Lit(0)))
	c, err := st.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	expected := "UPDATE t SET x = ? WHERE ?"
	if c.SQL != expected {
		t.Errorf("SQL = %q, want %q", c.SQL, expected)
	}
	if !reflect.DeepEqual(c.Args, []any{0, true}) {
		t.Errorf("Args = %v, want [0 true]", c.Args)
	}
}

func TestDelete_AlwaysTruePredicateBinds(t *testing.T) {
	st := Delete(testTable(), Lit(true))
	c, err := st.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	expected := "DELETE FROM t WHERE ?"
	if c.SQL != expected {
		t.Errorf("SQL = %q, want %q", c.SQL, expected)
	}
	if !reflect.DeepEqual(c.Args, []any{true}) {
		t.Errorf("Args = %v, want [true]", c.Args)
	}
}

func TestDelete_RequiresPredicate(t *testing.T) {
	if _, err := Delete(testTable(), Expr{}).Compile(nil); err == nil {
		t.Fatal("Expected error for missing delete predicate")
	}
}

func TestDelete_Conditional(t *testing.T) {
	tbl := testTable()
	st := Delete(tbl, tbl.C("x").Lt(Lit(0)).Or(tbl.C("id").Eq(Lit(99))))
	c, err := st.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	expected := "DELETE FROM t WHERE (x < ? OR id = ?)"
	if c.SQL != expected {
		t.Errorf("SQL = %q, want %q", c.SQL, expected)
	}
	if !reflect.DeepEqual(c.Args, []any{0, 99}) {
		t.Errorf("Args = %v, want [0 99]", c.Args)
	}
}
