// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// CREATE TABLE statements for a Dialect.
package ddl

// Logical column kinds, mapped to SQL types by each Dialect.
const (
	KindKey   = "key" // short text usable in a primary key
	KindInt   = "int"
	KindFloat = "float"
	KindText  = "text"
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, DOUBLE PRECISION)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., 0, CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "schema.table") and is
// quoted per segment by the dialect.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
