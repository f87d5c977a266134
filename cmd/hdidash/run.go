package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/google/uuid"

	"hdidash/internal/config"
	"hdidash/internal/dashboard"
	"hdidash/internal/export"
	"hdidash/internal/indicator"
	"hdidash/internal/logging"
	"hdidash/internal/metrics"
	"hdidash/internal/probe"
	"hdidash/internal/publish"
	"hdidash/internal/schema"
	"hdidash/internal/stats"
	"hdidash/internal/storage"
	"hdidash/internal/tablebuilder"
	"hdidash/internal/webui"
)

// Exit codes.
const (
	exitConfig = 1
	exitEmpty  = 2
	exitSink   = 3
)

// errSink marks failures after the table was built: rendering, storage,
// export and publishing.
var errSink = errors.New("sink failure")

// runOptions carries what execute needs besides the config.
type runOptions struct {
	probe     bool
	console   bool
	serveAddr string
	stdout    io.Writer

	// runID overrides the generated run id.
	runID string
	// store replaces the S3 client when publishing.
	store publish.ObjectStore
}

// exitCode maps a run error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, stats.ErrEmptyTable):
		return exitEmpty
	case errors.Is(err, errSink):
		return exitSink
	default:
		return exitConfig
	}
}

// execute runs one pipeline: load, build, render, then the optional sinks,
// then optionally serves the output directory until ctx is done.
func execute(ctx context.Context, cfg config.Run, opt runOptions) error {
	runID := opt.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logging.WithRunID(ctx, runID)
	log := logging.FromContext(ctx)

	if opt.probe {
		rep, err := probe.Run(ctx, cfg)
		if err != nil {
			return err
		}
		return probe.WriteText(opt.stdout, rep)
	}

	start := time.Now()
	in, err := tablebuilder.LoadInputs(ctx, cfg.Job, cfg.Inputs)
	if err != nil {
		return err
	}

	buildStart := time.Now()
	t, rep, err := tablebuilder.Build(ctx, in, tablebuilder.Options{
		Schema: schema.FromConfig(cfg.Schema),
		Logger: log,
	})
	metrics.RecordStep(cfg.Job, "build", err, time.Since(buildStart))
	if err != nil {
		return err
	}
	metrics.RecordRow(cfg.Job, "built", t.Len())
	metrics.RecordRow(cfg.Job, "filtered", rep.FilteredRecords)

	var console io.Writer
	if opt.console || cfg.Output.Console {
		console = opt.stdout
	}
	renderStart := time.Now()
	m, err := dashboard.Render(ctx, t, dashboard.Options{
		OutDir:       cfg.Output.Dir,
		TopN:         cfg.Output.TopN,
		Job:          cfg.Job,
		RunID:        runID,
		Workers:      cfg.Output.Workers,
		FrameDelay:   cfg.Output.FrameDelay,
		Locale:       cfg.Output.Locale,
		Console:      console,
		ConsoleColor: !color.NoColor,
	})
	metrics.RecordStep(cfg.Job, "render", err, time.Since(renderStart))
	if err != nil {
		if errors.Is(err, stats.ErrEmptyTable) {
			return fmt.Errorf("no complete records for years %d-%d: %w", cfg.Schema.YearFrom, cfg.Schema.YearTo, err)
		}
		return fmt.Errorf("%w: render: %w", errSink, err)
	}
	if log.Enabled(ctx, slog.LevelDebug) {
		log.Debug("summary", "dump", spew.Sdump(m.Summary))
	}

	if err := sinks(ctx, cfg, t, m, opt); err != nil {
		return fmt.Errorf("%w: %w", errSink, err)
	}
	log.Info("run complete", "dir", cfg.Output.Dir, "artifacts", len(m.Artifacts),
		"elapsed", time.Since(start).Truncate(time.Millisecond))

	if opt.serveAddr != "" {
		srv := webui.NewServer(webui.Config{
			Addr: opt.serveAddr,
			Dir:  cfg.Output.Dir,
			Probe: func(ctx context.Context) (probe.Report, error) {
				return probe.Run(ctx, cfg)
			},
		})
		log.Info("serving dashboard", "addr", opt.serveAddr)
		return srv.ListenAndServe(ctx)
	}
	return nil
}

// sinks writes the table to the configured database and parquet file and
// publishes the dashboard. Each is skipped when unconfigured.
func sinks(ctx context.Context, cfg config.Run, t *indicator.Table, m dashboard.Manifest, opt runOptions) error {
	log := logging.FromContext(ctx)

	if cfg.Storage.Kind != "" {
		repo, err := storage.New(ctx, storage.Config{
			Kind:       cfg.Storage.Kind,
			DSN:        cfg.Storage.DB.DSN,
			Table:      cfg.Storage.DB.Table,
			Columns:    storage.Columns,
			KeyColumns: storage.KeyColumns,
		})
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		st, err := storage.Save(ctx, repo, t, storage.SaveOptions{
			Kind:       cfg.Storage.Kind,
			Table:      cfg.Storage.DB.Table,
			AutoCreate: cfg.Storage.DB.AutoCreateTable,
			BatchSize:  cfg.Storage.DB.BatchSize,
			Job:        cfg.Job,
		})
		repo.Close()
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		log.Info("stored", "kind", cfg.Storage.Kind, "table", cfg.Storage.DB.Table, "rows", st.Rows, "batches", st.Batches)
	}

	if cfg.Export.Parquet != "" {
		n, err := export.WriteParquetFile(cfg.Export.Parquet, t)
		if err != nil {
			return fmt.Errorf("parquet: %w", err)
		}
		log.Info("exported", "path", cfg.Export.Parquet, "rows", n)
	}

	if cfg.Publish.Kind == "s3" {
		store := opt.store
		if store == nil {
			c, err := publish.NewS3Client(cfg.Publish.S3)
			if err != nil {
				return err
			}
			store = c
		}
		p := &publish.Publisher{
			Store:  store,
			Bucket: cfg.Publish.S3.Bucket,
			Prefix: cfg.Publish.S3.Prefix,
			Job:    cfg.Job,
		}
		res, err := p.Publish(ctx, cfg.Output.Dir, m)
		if err != nil {
			return err
		}
		log.Info("published", "bucket", cfg.Publish.S3.Bucket, "objects", len(res.Keys))
	}
	return nil
}
