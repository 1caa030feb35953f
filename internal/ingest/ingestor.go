package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/rickgao/energy-data/internal/model"
	"github.com/rickgao/energy-data/internal/watermark"
	"github.com/rickgao/energy-data/internal/writer"
)

// GapPolicy decides what a run does after a day fails to fetch.
type GapPolicy string

const (
	// GapHalt stops at the first failed day and drops its records, so the
	// loaded watermark never moves past a day that is missing data.
	GapHalt GapPolicy = "halt"

	// GapSkip logs the failure and carries on with the next zone and day.
	GapSkip GapPolicy = "skip"
)

// Sink loads a batch into the destination table.
type Sink[W any] interface {
	EnsureTable(ctx context.Context) error
	Append(ctx context.Context, batch model.Batch[W]) (writer.Result, error)
}

// Watermark reports the latest date already loaded.
type Watermark interface {
	Latest(ctx context.Context, table model.TableRef, column string) (time.Time, bool)
}

// Config holds ingestor configuration.
type Config struct {
	Name            string
	Table           model.TableRef
	WatermarkColumn string
	Zones           []model.Zone
	Policy          watermark.Policy
	IncludeToday    bool // Fetch today as well as past days
	GapPolicy       GapPolicy
}

// Report summarises one run.
type Report struct {
	Job       string
	From      time.Time // First day requested
	To        time.Time // Last day requested
	Days      int       // Days attempted
	Requests  int       // Source fetches, not HTTP attempts
	Failures  int       // Fetches that failed after retries
	Records   int       // Records fetched and kept
	Rows      int64     // Rows inserted
	Conflicts int64     // Rows skipped by upsert
	HaltedAt  time.Time // Failed day that stopped the run, zero if none
	LoadErr   error
}

// Halted reports whether the run stopped early on a failed day.
func (r Report) Halted() bool {
	return !r.HaltedAt.IsZero()
}

// Failed reports whether anything went wrong during the run.
func (r Report) Failed() bool {
	return r.Failures > 0 || r.LoadErr != nil
}

// Ingestor runs fetch, transform and load for one destination table.
// R is the fetched record type and W the loaded row type.
type Ingestor[R, W any] struct {
	cfg       Config
	source    Source[R]
	transform func([]R) []W
	sink      Sink[W]
	watermark Watermark
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a new Ingestor.
func New[R, W any](cfg Config, source Source[R], transform func([]R) []W, sink Sink[W], wm Watermark, logger *slog.Logger) *Ingestor[R, W] {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GapPolicy == "" {
		cfg.GapPolicy = GapHalt
	}
	return &Ingestor[R, W]{
		cfg:       cfg,
		source:    source,
		transform: transform,
		sink:      sink,
		watermark: wm,
		logger:    logger.With("job", cfg.Name),
		now:       time.Now,
	}
}

// Identity loads fetched records unchanged.
func Identity[R any](records []R) []R {
	return records
}

// Name returns the job name.
func (in *Ingestor[R, W]) Name() string {
	return in.cfg.Name
}

// Run performs one incremental run. Fetch and load failures are logged and
// reported; the error is non-nil only when ctx is cancelled, in which case
// nothing is loaded.
func (in *Ingestor[R, W]) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	today := in.now()

	latest, ok := in.watermark.Latest(ctx, in.cfg.Table, in.cfg.WatermarkColumn)
	report := Report{
		Job:  in.cfg.Name,
		From: in.cfg.Policy.Start(latest, ok, today),
		To:   watermark.End(today, in.cfg.IncludeToday),
	}

	if report.From.After(report.To) {
		in.logger.Info("already up to date",
			"table", in.cfg.Table.String(),
			"latest", latest.Format(time.DateOnly),
		)
		return report, nil
	}

	in.logger.Info("ingestion started",
		"table", in.cfg.Table.String(),
		"from", report.From.Format(time.DateOnly),
		"to", report.To.Format(time.DateOnly),
		"zones", len(in.cfg.Zones),
	)

	var records []R
	for day := report.From; !day.After(report.To); day = day.AddDate(0, 0, 1) {
		report.Days++

		dayRecords, failed, err := in.fetchDay(ctx, day, &report)
		if err != nil {
			return report, err
		}
		if failed && in.cfg.GapPolicy == GapHalt {
			report.HaltedAt = day
			in.logger.Warn("halting at failed day",
				"day", day.Format(time.DateOnly),
				"kept_days", report.Days-1,
			)
			break
		}
		records = append(records, dayRecords...)
	}
	report.Records = len(records)

	rows := in.transform(records)
	if len(rows) == 0 {
		in.logger.Info("no rows to load", "failures", report.Failures)
		return report, nil
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	// One stamp for the whole batch, taken as the save starts.
	batch := model.NewBatch(rows, in.now())
	res, err := in.save(ctx, batch)
	if err != nil {
		report.LoadErr = err
		in.logger.Error("load failed, batch discarded",
			"batch_id", batch.ID,
			"rows", batch.Len(),
			"error", err,
		)
		return report, nil
	}
	report.Rows = res.Inserted
	report.Conflicts = res.Conflicts

	in.logger.Info("ingestion complete",
		"days", report.Days,
		"requests", report.Requests,
		"failures", report.Failures,
		"records", report.Records,
		"rows", report.Rows,
		"duration", time.Since(start),
	)
	return report, nil
}

// fetchDay fetches every configured zone for day. failed is true when any
// zone failed; under GapHalt the remaining zones are not requested.
func (in *Ingestor[R, W]) fetchDay(ctx context.Context, day time.Time, report *Report) (records []R, failed bool, err error) {
	for _, zone := range in.cfg.Zones {
		report.Requests++

		seq, err := in.source.Fetch(ctx, zone, day)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, true, ctxErr
			}
			report.Failures++
			failed = true
			in.logger.Warn("fetch failed",
				"zone", zone,
				"day", day.Format(time.DateOnly),
				"error", err,
			)
			if in.cfg.GapPolicy == GapHalt {
				return nil, true, nil
			}
			continue
		}

		n := len(records)
		for r := range seq {
			records = append(records, r)
		}
		in.logger.Debug("fetched",
			"zone", zone,
			"day", day.Format(time.DateOnly),
			"records", len(records)-n,
		)
	}
	return records, failed, nil
}

func (in *Ingestor[R, W]) save(ctx context.Context, batch model.Batch[W]) (writer.Result, error) {
	if err := in.sink.EnsureTable(ctx); err != nil {
		return writer.Result{}, err
	}
	return in.sink.Append(ctx, batch)
}
