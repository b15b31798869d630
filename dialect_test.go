package relq

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestDialect_PlaceholderStyles(t *testing.T) {
	numbered := &Dialect{
		Name:        "numbered",
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}
	q := From(testTable()).Filter(func(r Shape) Expr {
		return ColOf(r, "x").Gt(Lit(1)).And(ColOf(r, "id").Lt(Lit(9)))
	})
	c, err := q.Compile(numbered)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasSuffix(c.SQL, "WHERE (t0.x > $1 AND t0.id < $2)") {
		t.Errorf("SQL = %q, want numbered placeholders", c.SQL)
	}
}

func TestDialect_FoldIdent(t *testing.T) {
	folding := &Dialect{Name: "folding", FoldIdent: strings.ToLower}
	tbl := NewTable("Events", ColumnDef{Name: "EventID", Type: TInt})
	c, err := From(tbl).Compile(folding)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	// Aliases are generated identifiers; folding applies only to physical
	// table and column names.
	expected := "SELECT Events0.eventid AS res__EventID FROM events Events0"
	if c.SQL != expected {
		t.Errorf("SQL = %q, want %q", c.SQL, expected)
	}
}

func TestDialect_OffsetFetch(t *testing.T) {
	d := &Dialect{Name: "fetch", Limit: OffsetFetch}

	q := From(testTable()).
		SortBy(func(r Shape) Expr { return ColOf(r, "x") }).
		Take(3)
	c, err := q.Compile(d)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasSuffix(c.SQL, "ORDER BY t0.x ASC OFFSET 0 ROWS FETCH NEXT 3 ROWS ONLY") {
		t.Errorf("SQL = %q, want OFFSET/FETCH pagination", c.SQL)
	}

	q = From(testTable()).
		SortBy(func(r Shape) Expr { return ColOf(r, "x") }).
		Drop(2)
	c, err = q.Compile(d)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasSuffix(c.SQL, "ORDER BY t0.x ASC OFFSET 2 ROWS") {
		t.Errorf("SQL = %q, want bare OFFSET pagination", c.SQL)
	}
}

func TestDialect_OffsetFetchRequiresOrder(t *testing.T) {
	d := &Dialect{Name: "fetch", Limit: OffsetFetch}
	_, err := From(testTable()).Take(3).Compile(d)
	if err == nil {
		t.Fatal("Expected error for FETCH without ORDER BY")
	}
	var ufe UnsupportedFeatureError
	if !errors.As(err, &ufe) {
		t.Fatalf("error = %T, want UnsupportedFeatureError", err)
	}
}

func TestDialect_NullsOrdering(t *testing.T) {
	tbl := testTable()
	mk := func() *Query {
		return From(tbl).
			LeftJoin(From(ordersT()), func(l Shape, r *Nullable) Expr {
				return ColOf(l, "id").Eq(r.Col("user_id"))
			}).
			SortBy(func(row Shape) Expr {
				return At(row, 1).(*Nullable).Col("total")
			}).Desc().NullsLast()
	}

	native := &Dialect{Name: "native", NullsOrdering: true}
	c, err := mk().Compile(native)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasSuffix(c.SQL, "ORDER BY orders0.total DESC NULLS LAST") {
		t.Errorf("SQL = %q, want native NULLS LAST", c.SQL)
	}

	c, err = mk().Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasSuffix(c.SQL, "ORDER BY orders0.total IS NULL ASC, orders0.total DESC") {
		t.Errorf("SQL = %q, want IS NULL rewrite", c.SQL)
	}
}

func TestDialect_NullsFirstRewrite(t *testing.T) {
	q := From(testTable()).
		SortBy(func(r Shape) Expr { return ColOf(r, "x") }).NullsFirst()
	c, err := q.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasSuffix(c.SQL, "ORDER BY t0.x IS NULL DESC, t0.x ASC") {
		t.Errorf("SQL = %q, want IS NULL DESC rewrite", c.SQL)
	}
}

func TestDialect_TrimStyles(t *testing.T) {
	tbl := NewTable("s", ColumnDef{Name: "name", Type: TString})
	mk := func() *Query {
		return From(tbl).Map(func(r Shape) Shape {
			return TrimChars(ColOf(r, "name"), Lit("-"))
		})
	}

	argStyle := &Dialect{Name: "argstyle", Trim: TrimCharsArg}
	c, err := mk().Compile(argStyle)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasPrefix(c.SQL, "SELECT TRIM(s0.name, ?) AS res") {
		t.Errorf("SQL = %q, want two-argument TRIM", c.SQL)
	}

	c, err = mk().Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasPrefix(c.SQL, "SELECT TRIM(BOTH ? FROM s0.name) AS res") {
		t.Errorf("SQL = %q, want BOTH ... FROM TRIM", c.SQL)
	}
}

func TestDialect_FunctionRenames(t *testing.T) {
	d := &Dialect{Name: "renamed", Functions: map[string]string{"LENGTH": "LEN"}}
	tbl := NewTable("s", ColumnDef{Name: "name", Type: TString})
	q := From(tbl).Map(func(r Shape) Shape {
		return Length(ColOf(r, "name"))
	})
	c, err := q.Compile(d)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasPrefix(c.SQL, "SELECT LEN(s0.name) AS res") {
		t.Errorf("SQL = %q, want renamed function", c.SQL)
	}
}

func TestDialect_CastNames(t *testing.T) {
	d := &Dialect{Name: "casts", CastNames: map[Type]string{TString: "TEXT"}}
	q := From(testTable()).Map(func(r Shape) Shape {
		return Cast(ColOf(r, "x"), TString)
	})
	c, err := q.Compile(d)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasPrefix(c.SQL, "SELECT CAST(t0.x AS TEXT) AS res") {
		t.Errorf("SQL = %q, want dialect cast name", c.SQL)
	}
}
