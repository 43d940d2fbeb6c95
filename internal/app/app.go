package app

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/alex-user-go/staysearch/internal/config"
	"github.com/alex-user-go/staysearch/internal/obs"
	"github.com/alex-user-go/staysearch/internal/output"
	"github.com/alex-user-go/staysearch/internal/schedule"
	"github.com/alex-user-go/staysearch/internal/search"
	"github.com/alex-user-go/staysearch/internal/source"
)

// Run initializes and runs the application.
func Run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Result rows go to stdout, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	logger = logger.With("run_id", uuid.New().String())

	if cfg.Schedule == "" {
		return runOnce(context.Background(), cfg, logger)
	}

	task := func() {
		if err := runOnce(context.Background(), cfg, logger); err != nil {
			logger.Error("scheduled run failed", "error", err)
		}
	}

	runner, err := schedule.New(cfg.Schedule, task, logger)
	if err != nil {
		return err
	}

	// First run happens immediately; later ones follow the schedule.
	task()
	runner.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	runner.Stop()
	return nil
}

// runOnce executes one full batch: load, index, rank, write.
func runOnce(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	start := time.Now()
	metrics := obs.NewMetrics()

	src, closeInput, err := newSource(cfg)
	if err != nil {
		return err
	}
	defer closeInput()

	ds, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	logger.Info("dataset loaded",
		"properties", len(ds.Properties),
		"availability_records", len(ds.Availability),
		"searches", len(ds.Searches),
	)

	index := search.NewIndex(ds.Properties, cfg.Radius)
	engine := search.NewEngine(index, ds.Availability, cfg.Workers, metrics, logger)

	rows, err := engine.Run(ctx, ds.Searches)
	if err != nil {
		return fmt.Errorf("running batch: %w", err)
	}

	if err := writeResults(cfg, rows); err != nil {
		return err
	}
	if err := writeMetrics(cfg, metrics); err != nil {
		return err
	}

	snap := metrics.Snapshot()
	logger.Info("run complete",
		"duration_ms", time.Since(start).Milliseconds(),
		"searches", snap.Searches,
		"candidates", snap.Candidates,
		"result_rows", snap.ResultRows,
		"stays_unavailable", snap.StaysUnavailable,
		"quote_cache_hits", snap.QuoteCacheHits,
	)
	return nil
}

// newSource builds the configured input source. The returned func releases
// any file the source reads from.
func newSource(cfg config.Config) (source.Source, func() error, error) {
	noop := func() error { return nil }

	if cfg.InputFormat == config.FormatSQLite {
		return source.NewSQLiteSource(cfg.InputPath), noop, nil
	}

	if cfg.InputIsStdin() {
		return source.NewSectionSource(os.Stdin), noop, nil
	}

	f, err := os.Open(cfg.InputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input %s: %w", cfg.InputPath, err)
	}
	return source.NewSectionSource(f), f.Close, nil
}

func writeResults(cfg config.Config, rows []search.Row) error {
	if cfg.OutputIsStdout() {
		return output.WriteRows(os.Stdout, rows)
	}

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("creating output %s: %w", cfg.OutputPath, err)
	}
	if err := output.WriteRows(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeMetrics(cfg config.Config, metrics *obs.Metrics) error {
	if cfg.MetricsPath == "" {
		return nil
	}

	f, err := os.Create(cfg.MetricsPath)
	if err != nil {
		return fmt.Errorf("creating metrics file %s: %w", cfg.MetricsPath, err)
	}
	if _, err := metrics.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing metrics: %w", err)
	}
	return f.Close()
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
