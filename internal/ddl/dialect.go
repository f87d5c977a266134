package ddl

import (
	"fmt"
	"strings"
)

// Dialect captures what differs between SQL backends when creating a table.
type Dialect struct {
	Name string

	// QuoteIdent quotes a single identifier segment.
	QuoteIdent func(string) string

	// Types maps logical kinds to SQL types; unknown kinds use Types[KindText].
	Types map[string]string

	// Guard wraps a plain CREATE TABLE for backends without
	// CREATE TABLE IF NOT EXISTS. nil means IF NOT EXISTS is used.
	Guard func(quotedFQN, create string) string
}

// Type maps a logical kind to the dialect's SQL type.
func (d Dialect) Type(kind string) string {
	if t, ok := d.Types[strings.ToLower(strings.TrimSpace(kind))]; ok {
		return t
	}
	return d.Types[KindText]
}

// QuoteFQN quotes a possibly schema-qualified name segment by segment. Empty
// segments are ignored.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, d.QuoteIdent(p))
		}
	}
	return strings.Join(out, ".")
}

// BuildCreateTableSQL renders an idempotent CREATE TABLE statement.
//
// Rules:
//   - t.FQN must be non-empty and at least one column is required.
//   - Each column must have a non-empty Name and SQLType.
//   - Primary-key columns are always NOT NULL.
//   - PRIMARY KEY is a separate clause, in column order.
//   - Default is emitted as raw SQL.
func BuildCreateTableSQL(d Dialect, t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s ddl: column %s missing SQLType", d.Name, name)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.QuoteIdent(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	quoted := d.QuoteFQN(fqn)
	if d.Guard != nil {
		create := fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", quoted, strings.Join(cols, ",\n  "))
		return d.Guard(quoted, create), nil
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", quoted, strings.Join(cols, ",\n  ")), nil
}

// Indicators is the table holding the cleaned indicator table, keyed by
// (country, year).
func Indicators(d Dialect, table string) TableDef {
	return TableDef{
		FQN: table,
		Columns: []ColumnDef{
			{Name: "country", SQLType: d.Type(KindKey), PrimaryKey: true},
			{Name: "year", SQLType: d.Type(KindInt), PrimaryKey: true},
			{Name: "hdi", SQLType: d.Type(KindFloat)},
			{Name: "life", SQLType: d.Type(KindFloat)},
			{Name: "population", SQLType: d.Type(KindFloat), Nullable: true},
		},
	}
}

// DoubleQuote quotes an identifier ANSI-style: "name", escaping embedded quotes.
func DoubleQuote(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
