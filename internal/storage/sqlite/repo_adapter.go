package sqlite

import (
	"context"

	"hdidash/internal/storage"
)

// newRepository is swapped by tests to avoid a live database.
var newRepository = NewRepository

func init() {
	storage.RegisterBackend("sqlite", Dialect, func(ctx context.Context, cfg storage.Config) (storage.Core, func(), error) {
		return newRepository(ctx, Config{
			DSN:        cfg.DSN,
			Table:      cfg.Table,
			Columns:    cfg.Columns,
			KeyColumns: cfg.KeyColumns,
		})
	})
}
