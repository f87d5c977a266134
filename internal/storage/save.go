package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hdidash/internal/indicator"
	"hdidash/internal/metrics"
)

// Columns is the destination column order of the indicator table.
var Columns = []string{"country", "year", "hdi", "life", "population"}

// KeyColumns identify one indicator record.
var KeyColumns = []string{"country", "year"}

// SaveOptions controls Save.
type SaveOptions struct {
	// Kind and Table are needed only when AutoCreate is set.
	Kind  string
	Table string

	AutoCreate bool

	// BatchSize bounds rows per CopyFrom; <= 0 sends everything at once.
	BatchSize int

	// Job labels metrics.
	Job string
}

// Save replaces the content of the destination table with t. Missing
// populations are written as NULL.
func Save(ctx context.Context, repo Core, t *indicator.Table, opt SaveOptions) (LoadStats, error) {
	start := time.Now()
	st, err := save(ctx, repo, t, opt)
	metrics.RecordStep(opt.Job, "store", err, time.Since(start))
	if err != nil {
		return st, err
	}
	metrics.RecordBatches(opt.Job, st.Batches)
	metrics.RecordRow(opt.Job, "inserted", int(st.Rows))
	slog.Info("table stored", "table", opt.Table, "rows", st.Rows, "batches", st.Batches, "elapsed", time.Since(start))
	return st, nil
}

func save(ctx context.Context, repo Core, t *indicator.Table, opt SaveOptions) (LoadStats, error) {
	if err := ctx.Err(); err != nil {
		return LoadStats{}, err
	}
	if opt.AutoCreate {
		if err := EnsureTable(ctx, opt.Kind, opt.Table, repo); err != nil {
			return LoadStats{}, err
		}
	}
	if err := repo.Truncate(ctx); err != nil {
		return LoadStats{}, fmt.Errorf("truncate: %w", err)
	}

	batch := opt.BatchSize
	if batch <= 0 {
		batch = max(t.Len(), 1)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows := make(chan []any, batch)
	go func() {
		defer close(rows)
		for _, r := range t.Records {
			select {
			case rows <- Row(r):
			case <-ctx.Done():
				return
			}
		}
	}()

	return LoadBatches(ctx, Columns, rows, batch, repo.CopyFrom)
}

// Row converts a record into values aligned with Columns.
func Row(r indicator.Record) []any {
	var pop any
	if r.Population != nil {
		pop = *r.Population
	}
	return []any{r.Country, r.Year, r.HDI, r.Life, pop}
}
