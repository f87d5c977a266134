// Package storage contains storage-agnostic contracts and utilities: the
// Repository interface implemented by each SQL backend, a kind-keyed factory
// registry, and the batched loader used to persist the indicator table.
//
// Backends register themselves from init; import
// hdidash/internal/storage/all to link every backend in.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hdidash/internal/ddl"
)

// Repository is the minimal contract a SQL backend provides.
type Repository interface {
	// CopyFrom bulk-inserts rows aligned to columns and returns the number of
	// rows the backend reports as inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs a statement that returns no rows (typically DDL).
	Exec(ctx context.Context, sql string) error

	// Truncate removes every row from the configured table.
	Truncate(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close()
}

// Core is a Repository without Close. Backend constructors return it
// together with the func that releases the connection pool. Save and
// EnsureTable only need a Core.
type Core interface {
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	Exec(ctx context.Context, sql string) error
	Truncate(ctx context.Context) error
}

// Opener constructs a backend repository for cfg.
type Opener func(ctx context.Context, cfg Config) (Core, func(), error)

type closer struct {
	Core
	closeFn func()
}

func (c closer) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

// WithClose adapts a backend repository and its cleanup func to Repository.
func WithClose(r Core, closeFn func()) Repository { return closer{Core: r, closeFn: closeFn} }

// RegisterBackend registers kind's factory and its DDL dialect.
func RegisterBackend(kind string, d ddl.Dialect, open Opener) {
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		r, closeFn, err := open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return WithClose(r, closeFn), nil
	})
	RegisterDDL(kind, d)
}

// Config is the backend-neutral repository configuration.
type Config struct {
	// Kind selects the backend: "sqlite", "postgres", "mysql", "mssql".
	Kind string

	// DSN is passed to the backend driver unchanged.
	DSN string

	// Table is the destination table, optionally schema-qualified.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string

	// KeyColumns identify a record; used by backends for DDL.
	KeyColumns []string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
