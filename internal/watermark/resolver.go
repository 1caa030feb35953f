// Package watermark determines where an incremental run resumes.
//
// The watermark is never stored separately: it is the latest date already
// present in the destination table, so a day that never loaded is fetched again.
package watermark

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/energy-data/internal/model"
)

// Querier is the subset of pgxpool.Pool the resolver needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Resolver reads the latest loaded date from a destination table.
type Resolver struct {
	db     Querier
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(db Querier, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{db: db, logger: logger}
}

// Latest returns the UTC calendar date of MAX(column) in table. ok is false when
// the table is empty, missing, or the query fails; failures are logged, not returned.
func (r *Resolver) Latest(ctx context.Context, table model.TableRef, column string) (latest time.Time, ok bool) {
	sql := fmt.Sprintf("SELECT MAX(%s) FROM %s",
		pgx.Identifier{column}.Sanitize(),
		pgx.Identifier{table.Dataset, table.Table}.Sanitize(),
	)

	var newest *time.Time
	if err := r.db.QueryRow(ctx, sql).Scan(&newest); err != nil {
		r.logger.Warn("watermark query failed, using default start",
			"table", table.String(),
			"error", err,
		)
		return time.Time{}, false
	}
	if newest == nil {
		r.logger.Info("destination table is empty", "table", table.String())
		return time.Time{}, false
	}

	return model.DateOf(newest.UTC()), true
}

// Policy decides the date range of a run.
type Policy struct {
	LookbackDays int       // Days back from today when nothing is loaded
	StartDate    time.Time // Backfill start used instead of the lookback when set
}

// Start returns the first day to fetch: the day after latest when present,
// else StartDate when set, else today minus LookbackDays.
func (p Policy) Start(latest time.Time, ok bool, today time.Time) time.Time {
	if ok {
		return model.DateOf(latest).AddDate(0, 0, 1)
	}
	if !p.StartDate.IsZero() {
		return model.DateOf(p.StartDate)
	}
	return model.DateOf(today).AddDate(0, 0, -p.LookbackDays)
}

// End returns the last day to fetch, inclusive.
func End(today time.Time, includeToday bool) time.Time {
	end := model.DateOf(today)
	if !includeToday {
		end = end.AddDate(0, 0, -1)
	}
	return end
}
