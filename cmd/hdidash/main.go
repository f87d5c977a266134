package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hdidash/internal/config"
	"hdidash/internal/logging"
	"hdidash/internal/metrics"
	"hdidash/internal/metrics/datadog"
	"hdidash/internal/metrics/prompush"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "hdidash/internal/storage/all"
)

// flags are the command line overrides applied on top of the config file.
type flags struct {
	cfgPath        string
	validate       bool
	probe          bool
	outDir         string
	console        bool
	metricsBackend string
	pushGatewayURL string
	ddAddr         string
	serveAddr      string
	verbose        bool
}

// main loads the run config, selects a metrics backend and executes the
// pipeline, exiting with a code that tells config faults from empty results
// and render failures.
func main() {
	var f flags
	flag.StringVar(&f.cfgPath, "config", "", "run config path (.json, .yaml); defaults apply without it")
	flag.BoolVar(&f.validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&f.probe, "probe", false, "print how every input header resolves, then exit")
	flag.StringVar(&f.outDir, "out", "", "output directory (overrides output.dir)")
	flag.BoolVar(&f.console, "console", false, "print value boxes and the comparison table")
	flag.StringVar(&f.metricsBackend, "metrics-backend", "", "metrics backend: pushgateway, datadog, none (overrides env METRICS_BACKEND)")
	flag.StringVar(&f.pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&f.ddAddr, "dd-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")
	flag.StringVar(&f.serveAddr, "serve", "", "after rendering, serve the output dir on this address until interrupted")
	flag.BoolVar(&f.verbose, "v", false, "enable debug logs")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fatalf(exitConfig, "%v", err)
	}
	cfg, err := loadConfig(f, os.LookupEnv)
	if err != nil {
		fatalf(exitConfig, "%v", err)
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if err := config.Err(issues); err != nil {
		fmt.Fprintf(os.Stderr, "configuration is invalid: %s\n", configName(f.cfgPath))
		os.Exit(exitConfig)
	}
	if f.validate {
		fmt.Fprintf(os.Stderr, "configuration is valid: %s\n", configName(f.cfgPath))
		os.Exit(0)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	flush := setupMetrics(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = execute(ctx, cfg, runOptions{
		probe:     f.probe,
		console:   f.console,
		serveAddr: f.serveAddr,
		stdout:    os.Stdout,
	})
	stop()
	flush()

	if err != nil {
		slog.Error("run failed", "err", err)
		os.Exit(exitCode(err))
	}
}

// loadConfig resolves the run config: defaults, then the config file, then
// the environment, then flags.
func loadConfig(f flags, lookup func(string) (string, bool)) (config.Run, error) {
	cfg := config.Default()
	if f.cfgPath != "" {
		var err error
		if cfg, err = config.Load(f.cfgPath); err != nil {
			return cfg, err
		}
	}
	config.ApplyEnv(&cfg, lookup)

	if f.outDir != "" {
		cfg.Output.Dir = f.outDir
	}
	if f.console {
		cfg.Output.Console = true
	}
	if f.metricsBackend != "" {
		cfg.Metrics.Backend = f.metricsBackend
	}
	if f.pushGatewayURL != "" {
		cfg.Metrics.PushgatewayURL = f.pushGatewayURL
	}
	if f.ddAddr != "" {
		cfg.Metrics.DatadogAddr = f.ddAddr
	}
	if f.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// setupMetrics installs the configured backend and returns the flush to
// run before exit. Backend failures degrade to the no-op backend.
func setupMetrics(cfg config.Run) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "pushgateway", "prom", "prometheus":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case "datadog", "dogstatsd":
		addr := cfg.Metrics.DatadogAddr
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "hdidash.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
	default:
		slog.Debug("metrics disabled", "backend", cfg.Metrics.Backend)
		return func() {}
	}
	if err != nil {
		slog.Warn("metrics backend unavailable; using nop", "backend", cfg.Metrics.Backend, "err", err)
		return func() {}
	}
	slog.Info("metrics enabled", "backend", cfg.Metrics.Backend, "job", cfg.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			slog.Warn("metrics flush failed", "err", err)
		}
	}
}

func configName(path string) string {
	if path == "" {
		return "(defaults)"
	}
	return path
}

func fatalf(code int, format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(code)
}
