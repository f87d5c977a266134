package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:hdi.db?cache=shared"
	//   "hdi.db" (interpreted by the driver)
	DSN string

	// Table is the target table name, e.g. "indicators". FQN values such as
	// "main.indicators" are accepted and quoted per segment.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string

	// KeyColumns is carried for parity with other backends; the primary key
	// itself comes from the DDL.
	KeyColumns []string
}
