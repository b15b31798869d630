package relq

import "fmt"

// LimitStyle selects the pagination syntax a dialect understands.
type LimitStyle int

const (
	// LimitOffset renders LIMIT n OFFSET m.
	LimitOffset LimitStyle = iota
	// OffsetFetch renders OFFSET m ROWS FETCH NEXT n ROWS ONLY (SQL Server).
	OffsetFetch
)

// TrimStyle selects how trim-with-characters is spelled.
type TrimStyle int

const (
	// TrimCharsFrom renders TRIM(BOTH chars FROM s), the SQL-92 form.
	TrimCharsFrom TrimStyle = iota
	// TrimCharsArg renders TRIM(s, chars) (SQLite, Oracle).
	TrimCharsArg
	// TrimCharsFromBare renders TRIM(chars FROM s) without the BOTH keyword,
	// which SQL Server rejects before 2022.
	TrimCharsFromBare
)

// Dialect describes the SQL features and spellings of a target database.
// The zero value is the most portable SQL-92 form; renderers consult these
// flags and fall back to the portable spelling for anything unset.
type Dialect struct {
	Name string

	// Placeholder renders the n-th (1-based) parameter placeholder.
	// Nil means "?".
	Placeholder func(n int) string

	Limit LimitStyle
	Trim  TrimStyle

	// FullOuterJoin is true when FULL OUTER JOIN is supported directly.
	// When false, outer joins are rewritten as LEFT JOIN ... UNION RIGHT JOIN.
	FullOuterJoin bool

	// NullsOrdering is true when ORDER BY ... NULLS FIRST/LAST is supported.
	// When false, an IS NULL sort key is emitted instead.
	NullsOrdering bool

	// ValuesClause is true when a values relation may render as a
	// (VALUES ...) derived table with a column alias list. When false, a
	// UNION ALL chain of single-row SELECTs is emitted.
	ValuesClause bool

	// CastNames overrides the type name used in CAST(x AS name) per type.
	CastNames map[Type]string

	// Functions overrides scalar function names, keyed by the portable name.
	Functions map[string]string

	// FoldIdent folds table and column identifiers (case mapping). Nil
	// leaves identifiers untouched.
	FoldIdent func(string) string
}

// Portable returns the SQL-92 fallback dialect.
func Portable() *Dialect {
	return &Dialect{Name: "ansi"}
}

func (d *Dialect) placeholder(n int) string {
	if d.Placeholder != nil {
		return d.Placeholder(n)
	}
	return "?"
}

func (d *Dialect) castName(t Type) string {
	if name, ok := d.CastNames[t]; ok {
		return name
	}
	switch t {
	case TBool:
		return "BOOLEAN"
	case TInt:
		return "BIGINT"
	case TFloat:
		return "DOUBLE PRECISION"
	case TString:
		return "VARCHAR"
	case TTime:
		return "TIMESTAMP"
	case TBytes:
		return "BLOB"
	default:
		return fmt.Sprintf("TYPE%d", int(t))
	}
}

func (d *Dialect) funcName(portable string) string {
	if name, ok := d.Functions[portable]; ok {
		return name
	}
	return portable
}

func (d *Dialect) foldIdent(name string) string {
	if d.FoldIdent != nil {
		return d.FoldIdent(name)
	}
	return name
}
