package tablebuilder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"hdidash/internal/config"
	"hdidash/internal/datasource"
	"hdidash/internal/metrics"
	"hdidash/internal/parser"
	"hdidash/pkg/records"
)

// LoadInputs opens and parses the three configured sources concurrently.
// Any failure cancels the others and is returned wrapped in ErrInput.
func LoadInputs(ctx context.Context, job string, in config.Inputs) (Inputs, error) {
	var out Inputs
	targets := []struct {
		name string
		cfg  config.Input
		dst  *records.Table
	}{
		{config.SourceHDI, in.HDI, &out.HDI},
		{config.SourceLex, in.Lex, &out.Lex},
		{config.SourcePop, in.Pop, &out.Pop},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, tg := range targets {
		tg := tg
		g.Go(func() error {
			t, err := loadOne(gctx, job, tg.name, tg.cfg)
			if err != nil {
				return err
			}
			*tg.dst = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	return out, nil
}

func loadOne(ctx context.Context, job, name string, cfg config.Input) (tbl records.Table, err error) {
	start := time.Now()
	defer func() { metrics.RecordStep(job, "load_"+name, err, time.Since(start)) }()

	src, err := datasource.New(cfg.Source)
	if err != nil {
		return records.Table{}, fmt.Errorf("%w: %s: %v", ErrInput, name, err)
	}
	p, err := parser.New(cfg.Parser)
	if err != nil {
		return records.Table{}, fmt.Errorf("%w: %s: %v", ErrInput, name, err)
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return records.Table{}, fmt.Errorf("%w: %s: %w", ErrInput, name, err)
	}
	defer rc.Close()

	tbl, skipped, err := p.Parse(rc)
	if err != nil {
		return records.Table{}, fmt.Errorf("%w: %s: parse %s: %w", ErrInput, name, datasource.Describe(cfg.Source), err)
	}
	metrics.RecordRow(job, "parsed_"+name, len(tbl.Rows))
	if skipped > 0 {
		metrics.RecordRow(job, "skipped_"+name, skipped)
	}
	slog.Info("input loaded",
		"source", name,
		"location", datasource.Describe(cfg.Source),
		"columns", len(tbl.Columns),
		"rows", len(tbl.Rows),
		"skipped", skipped,
		"elapsed", time.Since(start),
	)
	return tbl, nil
}
