package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"hdidash/internal/ddl"
)

var (
	ddlMu    sync.RWMutex
	dialects = map[string]ddl.Dialect{}
)

// RegisterDDL registers (or replaces) the SQL dialect used to create tables
// for the given storage kind. It is typically called from backend packages'
// init() functions next to Register.
func RegisterDDL(kind string, d ddl.Dialect) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	dialects[kind] = d
}

// DialectFor returns the dialect registered for kind.
func DialectFor(kind string) (ddl.Dialect, bool) {
	ddlMu.RLock()
	defer ddlMu.RUnlock()
	d, ok := dialects[kind]
	return d, ok
}

// EnsureTable creates the indicator table in repo when it does not exist,
// using the dialect registered for kind.
func EnsureTable(ctx context.Context, kind, table string, repo Core) error {
	d, ok := DialectFor(kind)
	if !ok {
		return fmt.Errorf("no DDL dialect registered for storage.kind=%q", kind)
	}
	stmt, err := ddl.BuildCreateTableSQL(d, ddl.Indicators(d, table))
	if err != nil {
		return err
	}
	slog.Debug("ensure table", "kind", kind, "table", table)
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}
