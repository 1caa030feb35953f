package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/energy-data/internal/aggregate"
	"github.com/rickgao/energy-data/internal/config"
	"github.com/rickgao/energy-data/internal/model"
	"github.com/rickgao/energy-data/internal/watermark"
	"github.com/rickgao/energy-data/internal/writer"
)

// Job is a configured ingestor ready to run.
type Job interface {
	Name() string
	Run(ctx context.Context) (Report, error)
}

// Deps are the shared resources jobs are built from.
type Deps struct {
	Prices    PriceFetcher
	Load      LoadFetcher
	DB        writer.DB
	Watermark Watermark
	Project   string // Database name
	Dataset   string // Schema
	Logger    *slog.Logger
}

// NewJob builds the ingestor described by cfg. cfg is expected to have had
// defaults applied.
func NewJob(cfg config.JobConfig, deps Deps) (Job, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	zones := make([]model.Zone, 0, len(cfg.Zones))
	for _, z := range cfg.Zones {
		zone, err := model.ParseZone(z)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", cfg.Name, err)
		}
		zones = append(zones, zone)
	}

	startDate, _, err := cfg.Start()
	if err != nil {
		return nil, fmt.Errorf("job %s: start_date: %w", cfg.Name, err)
	}

	ic := Config{
		Name:  cfg.Name,
		Table: model.TableRef{Project: deps.Project, Dataset: deps.Dataset, Table: cfg.Table},
		Zones: zones,
		Policy: watermark.Policy{
			LookbackDays: cfg.LookbackDays,
			StartDate:    startDate,
		},
		IncludeToday: cfg.IncludeToday == nil || *cfg.IncludeToday,
		GapPolicy:    GapPolicy(cfg.GapPolicy),
	}
	mode := writer.Mode(cfg.WriteMode)

	switch cfg.Kind {
	case config.KindPrices:
		ic.WatermarkColumn = "date"
		sink := writer.NewTableWriter(deps.DB, ic.Table, writer.PriceTable, mode, logger)
		return New(ic, NewPriceSource(deps.Prices), Identity[model.PriceRecord], sink, deps.Watermark, logger), nil

	case config.KindDailyAvg:
		ic.WatermarkColumn = "date"
		sink := writer.NewTableWriter(deps.DB, ic.Table, writer.DailyPriceTable, mode, logger)
		return New(ic, NewPriceSource(deps.Prices), aggregate.Daily, sink, deps.Watermark, logger), nil

	case config.KindLoad:
		ic.WatermarkColumn = "timestamp"
		sink := writer.NewTableWriter(deps.DB, ic.Table, writer.LoadTable, mode, logger)
		return New(ic, NewLoadSource(deps.Load, logger), Identity[model.LoadRecord], sink, deps.Watermark, logger), nil

	default:
		return nil, fmt.Errorf("job %s: unknown kind %q", cfg.Name, cfg.Kind)
	}
}

// Deduplicate removes rows repeated by overlapping append-mode runs from the
// job's destination table and returns how many were deleted.
func Deduplicate(ctx context.Context, cfg config.JobConfig, deps Deps) (int64, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ref := model.TableRef{Project: deps.Project, Dataset: deps.Dataset, Table: cfg.Table}

	switch cfg.Kind {
	case config.KindPrices:
		return writer.NewTableWriter(deps.DB, ref, writer.PriceTable, writer.ModeAppend, logger).Dedupe(ctx)
	case config.KindDailyAvg:
		return writer.NewTableWriter(deps.DB, ref, writer.DailyPriceTable, writer.ModeAppend, logger).Dedupe(ctx)
	case config.KindLoad:
		return writer.NewTableWriter(deps.DB, ref, writer.LoadTable, writer.ModeAppend, logger).Dedupe(ctx)
	default:
		return 0, fmt.Errorf("job %s: unknown kind %q", cfg.Name, cfg.Kind)
	}
}
