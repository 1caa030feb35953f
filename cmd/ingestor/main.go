package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/energy-data/internal/api"
	"github.com/rickgao/energy-data/internal/config"
	"github.com/rickgao/energy-data/internal/database"
	"github.com/rickgao/energy-data/internal/ingest"
	"github.com/rickgao/energy-data/internal/pacer"
	"github.com/rickgao/energy-data/internal/version"
	"github.com/rickgao/energy-data/internal/watermark"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config file (environment only when empty)")
	jobName := flag.String("job", "", "run only this job (default: all configured jobs)")
	strict := flag.Bool("strict", false, "exit 1 when any job reports a fetch or load failure")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting ingestor",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	jobs := cfg.Jobs
	if *jobName != "" {
		job, ok := cfg.Job(*jobName)
		if !ok {
			logger.Error("unknown job", "job", *jobName)
			return 1
		}
		jobs = []config.JobConfig{job}
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to warehouse
	logger.Info("connecting to warehouse",
		"host", cfg.Database.Warehouse.Host,
		"port", cfg.Database.Warehouse.Port,
		"database", cfg.Database.Warehouse.Name,
		"dataset", cfg.Database.Dataset,
	)

	pool, err := database.Connect(ctx, cfg.Database.Warehouse)
	if err != nil {
		logger.Error("failed to connect to warehouse", "error", err)
		return 1
	}
	defer pool.Close()

	// Both upstreams share one request budget.
	p := pacer.New(cfg.API.RequestInterval)
	clientOpts := func(component string) []api.ClientOption {
		return []api.ClientOption{
			api.WithLogger(logger.With("component", component)),
			api.WithTimeout(cfg.API.Timeout),
			api.WithRetries(cfg.API.MaxAttempts, cfg.API.RetryDelay),
			api.WithPacer(p),
		}
	}

	deps := ingest.Deps{
		Prices:    api.NewClient(cfg.API.PricesURL, "", clientOpts("prices_api")...),
		Load:      api.NewClient(cfg.API.EntsoeURL, cfg.API.Token, clientOpts("entsoe_api")...),
		DB:        pool,
		Watermark: watermark.NewResolver(pool, logger.With("component", "watermark")),
		Project:   cfg.Database.Warehouse.Name,
		Dataset:   cfg.Database.Dataset,
		Logger:    logger,
	}

	var failed int
	for _, jc := range jobs {
		job, err := ingest.NewJob(jc, deps)
		if err != nil {
			logger.Error("failed to build job", "job", jc.Name, "error", err)
			return 1
		}

		report, err := job.Run(ctx)
		if err != nil {
			logger.Warn("ingestion interrupted", "job", job.Name(), "error", err)
			return 1
		}

		logger.Info("job finished",
			"job", report.Job,
			"from", report.From.Format(time.DateOnly),
			"to", report.To.Format(time.DateOnly),
			"days", report.Days,
			"failures", report.Failures,
			"records", report.Records,
			"rows", report.Rows,
			"conflicts", report.Conflicts,
			"halted", report.Halted(),
			"load_error", report.LoadErr,
		)
		if report.Failed() {
			failed++
		}
	}

	logger.Info("ingestor finished", "jobs", len(jobs), "failed_jobs", failed)

	if *strict && failed > 0 {
		return 1
	}
	return 0
}
