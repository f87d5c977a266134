package ddl

import (
	"strings"
	"testing"
)

var ansi = Dialect{
	Name:       "ansi",
	QuoteIdent: DoubleQuote,
	Types:      map[string]string{KindKey: "TEXT", KindInt: "INTEGER", KindFloat: "REAL", KindText: "TEXT"},
}

var bracket = Dialect{
	Name:       "bracket",
	QuoteIdent: func(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" },
	Types:      map[string]string{KindKey: "NVARCHAR(255)", KindText: "NVARCHAR(MAX)"},
	Guard: func(fqn, create string) string {
		return "IF OBJECT_ID(N'" + fqn + "', N'U') IS NULL\nBEGIN\n" + create + "\nEND;"
	},
}

// TestBuildCreateTableSQL verifies rendering and input validation using
// table-driven subtests.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		d           Dialect
		def         TableDef
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			d:           ansi,
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			errContains: "ansi ddl: table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			d:           ansi,
			def:         TableDef{FQN: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "column without type returns error",
			d:           ansi,
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "column id missing SQLType",
		},
		{
			name: "schema qualified with key and default",
			d:    ansi,
			def: TableDef{FQN: "public.t", Columns: []ColumnDef{
				{Name: "id", SQLType: "INTEGER", Nullable: true, PrimaryKey: true},
				{Name: `we"ird`, SQLType: "TEXT", Nullable: true, Default: "'x'"},
			}},
			wantSQL: "CREATE TABLE IF NOT EXISTS \"public\".\"t\" (\n  \"id\" INTEGER NOT NULL,\n  \"we\"\"ird\" TEXT DEFAULT 'x',\n  PRIMARY KEY (\"id\")\n);",
		},
		{
			name:    "guarded dialect",
			d:       bracket,
			def:     TableDef{FQN: "dbo.t", Columns: []ColumnDef{{Name: "c", SQLType: "INT"}}},
			wantSQL: "IF OBJECT_ID(N'[dbo].[t]', N'U') IS NULL\nBEGIN\nCREATE TABLE [dbo].[t] (\n  [c] INT NOT NULL\n);\nEND;",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildCreateTableSQL(tt.d, tt.def)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("err=%v; want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildCreateTableSQL: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("sql mismatch:\n got: %q\nwant: %q", got, tt.wantSQL)
			}
		})
	}
}

func TestIndicators(t *testing.T) {
	t.Parallel()

	def := Indicators(bracket, "dbo.indicators")
	if len(def.Columns) != 5 {
		t.Fatalf("columns=%d", len(def.Columns))
	}
	if c := def.Columns[0]; c.Name != "country" || c.SQLType != "NVARCHAR(255)" || !c.PrimaryKey {
		t.Fatalf("country=%+v", c)
	}
	// Unknown kinds fall back to text.
	if c := def.Columns[1]; c.SQLType != "NVARCHAR(MAX)" {
		t.Fatalf("year type=%q", c.SQLType)
	}
	if c := def.Columns[4]; !c.Nullable || c.PrimaryKey {
		t.Fatalf("population=%+v", c)
	}

	sql, err := BuildCreateTableSQL(ansi, Indicators(ansi, "indicators"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(sql, `PRIMARY KEY ("country", "year")`) || !strings.Contains(sql, `"population" REAL,`) {
		t.Fatalf("sql=%s", sql)
	}
}
