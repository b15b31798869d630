package relq

import (
	"fmt"
	"strings"

	"github.com/zoobzio/dbml"
)

// Schema holds the tables of a DBML project with their columns mapped to
// semantic types. The compiler consumes per-table ordered (name, type)
// pairs; it never infers schema itself.
type Schema struct {
	project *dbml.Project
	tables  map[string]*Table
}

// NewSchema indexes a DBML project. A column whose DBML type has no
// registered semantic mapping is a construction error.
func NewSchema(project *dbml.Project) (*Schema, error) {
	if project == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}

	s := &Schema{
		project: project,
		tables:  make(map[string]*Table),
	}

	for _, table := range project.Tables {
		cols := make([]ColumnDef, 0, len(table.Columns))
		for _, col := range table.Columns {
			typ, err := mapDBMLType(col.Type)
			if err != nil {
				return nil, fmt.Errorf("table %q column %q: %w", table.Name, col.Name, err)
			}
			cols = append(cols, ColumnDef{Name: col.Name, Type: typ, Nullable: col.Settings.Null})
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("table %q has no columns", table.Name)
		}
		s.tables[table.Name] = &Table{name: table.Name, cols: cols}
	}

	return s, nil
}

// TryTable looks up a table by name, returning an error if it is not part of
// the schema.
func (s *Schema) TryTable(name string) (*Table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q not found in schema", name)
	}
	return t, nil
}

// Table looks up a table by name. It panics if the table is not part of the
// schema.
func (s *Schema) Table(name string) *Table {
	t, err := s.TryTable(name)
	if err != nil {
		panic(err)
	}
	return t
}

// mapDBMLType maps a DBML column type to its semantic type.
func mapDBMLType(dbmlType string) (Type, error) {
	base := strings.ToLower(dbmlType)
	if i := strings.IndexByte(base, '('); i != -1 {
		base = base[:i]
	}
	switch base {
	case "bool", "boolean":
		return TBool, nil
	case "int", "integer", "smallint", "bigint", "serial", "bigserial":
		return TInt, nil
	case "real", "float", "double", "double precision", "numeric", "decimal":
		return TFloat, nil
	case "char", "varchar", "text", "json", "jsonb", "uuid":
		return TString, nil
	case "date", "time", "timestamp", "timestamptz", "datetime":
		return TTime, nil
	case "bytea", "blob", "binary", "varbinary":
		return TBytes, nil
	default:
		return 0, fmt.Errorf("no semantic type mapping for dbml type %q", dbmlType)
	}
}
