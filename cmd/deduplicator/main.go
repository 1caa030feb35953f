// Command deduplicator removes rows that append-mode reruns loaded twice,
// keeping the earliest load of each natural key.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/energy-data/internal/config"
	"github.com/rickgao/energy-data/internal/database"
	"github.com/rickgao/energy-data/internal/ingest"
	"github.com/rickgao/energy-data/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config file (environment only when empty)")
	jobName := flag.String("job", "", "deduplicate only this job's table (default: all)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting deduplicator", "version", version.Version, "config", *configPath)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database.Warehouse)
	if err != nil {
		logger.Error("failed to connect to warehouse", "error", err)
		return 1
	}
	defer pool.Close()

	deps := ingest.Deps{
		DB:      pool,
		Project: cfg.Database.Warehouse.Name,
		Dataset: cfg.Database.Dataset,
		Logger:  logger,
	}

	code := 0
	for _, jc := range jobs {
		removed, err := ingest.Deduplicate(ctx, jc, deps)
		if err != nil {
			logger.Error("deduplication failed", "job", jc.Name, "error", err)
			code = 1
			continue
		}
		logger.Info("table deduplicated", "job", jc.Name, "table", jc.Table, "removed", removed)
	}
	return code
}
