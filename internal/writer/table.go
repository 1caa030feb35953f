package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/energy-data/internal/model"
)

// DB is the subset of pgxpool.Pool the writer needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// stagingTable receives upsert batches before they are merged into the target.
const stagingTable = "ingest_staging"

// uniqueViolation is the SQLSTATE Postgres reports when a unique index would be violated.
const uniqueViolation = "23505"

// TableWriter loads batches of R into one destination table.
type TableWriter[R any] struct {
	db     DB
	ref    model.TableRef
	table  Table[R]
	mode   Mode
	logger *slog.Logger

	mu      sync.Mutex
	metrics WriterMetrics
}

// NewTableWriter creates a new TableWriter.
func NewTableWriter[R any](db DB, ref model.TableRef, table Table[R], mode Mode, logger *slog.Logger) *TableWriter[R] {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == "" {
		mode = ModeAppend
	}
	return &TableWriter[R]{
		db:     db,
		ref:    ref,
		table:  table,
		mode:   mode,
		logger: logger.With("table", ref.String(), "mode", string(mode)),
	}
}

// Ref returns the destination table.
func (w *TableWriter[R]) Ref() model.TableRef {
	return w.ref
}

// Stats returns current metrics.
func (w *TableWriter[R]) Stats() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// EnsureTable creates the schema and table if they do not exist. In upsert mode
// it also creates the unique index the merge relies on.
func (w *TableWriter[R]) EnsureTable(ctx context.Context) error {
	for _, stmt := range w.ddl() {
		if _, err := w.db.Exec(ctx, stmt); err != nil {
			// The natural-key index cannot be built over rows an earlier
			// append-mode run already duplicated.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("ensure table %s: existing rows repeat the natural key, run the deduplicator before switching to upsert: %w", w.ref, err)
			}
			return fmt.Errorf("ensure table %s: %w", w.ref, err)
		}
	}
	return nil
}

// Append writes the whole batch in one atomic operation.
func (w *TableWriter[R]) Append(ctx context.Context, batch model.Batch[R]) (Result, error) {
	if batch.Len() == 0 {
		return Result{}, nil
	}

	start := time.Now()
	rows := w.rows(batch)

	var (
		res Result
		err error
	)
	switch w.mode {
	case ModeUpsert:
		res, err = w.upsert(ctx, rows)
	default:
		res, err = w.copy(ctx, rows)
	}

	w.mu.Lock()
	if err != nil {
		w.metrics.Errors++
	} else {
		w.metrics.Inserts += res.Inserted
		w.metrics.Conflicts += res.Conflicts
		w.metrics.Flushes++
	}
	w.mu.Unlock()

	if err != nil {
		return Result{}, fmt.Errorf("append to %s: %w", w.ref, err)
	}

	w.logger.Info("batch loaded",
		"batch_id", batch.ID,
		"rows", len(rows),
		"inserted", res.Inserted,
		"conflicts", res.Conflicts,
		"duration", time.Since(start),
	)
	return res, nil
}

// copy appends rows with a single COPY.
func (w *TableWriter[R]) copy(ctx context.Context, rows [][]any) (Result, error) {
	n, err := w.db.CopyFrom(ctx, w.identifier(), w.columnNames(), pgx.CopyFromRows(rows))
	if err != nil {
		return Result{}, err
	}
	return Result{Inserted: n}, nil
}

// upsert copies rows into a transaction-scoped staging table, then merges them
// with ON CONFLICT DO NOTHING.
func (w *TableWriter[R]) upsert(ctx context.Context, rows [][]any) (res Result, err error) {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	staging := pgx.Identifier{stagingTable}
	if _, err = tx.Exec(ctx, fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		staging.Sanitize(), w.identifier().Sanitize(),
	)); err != nil {
		return Result{}, fmt.Errorf("create staging table: %w", err)
	}

	if _, err = tx.CopyFrom(ctx, staging, w.columnNames(), pgx.CopyFromRows(rows)); err != nil {
		return Result{}, fmt.Errorf("copy to staging: %w", err)
	}

	tag, err := tx.Exec(ctx, w.mergeSQL())
	if err != nil {
		return Result{}, fmt.Errorf("merge: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}

	inserted := tag.RowsAffected()
	return Result{Inserted: inserted, Conflicts: int64(len(rows)) - inserted}, nil
}

// rows encodes a batch, stamping each row with the batch's load time and id.
func (w *TableWriter[R]) rows(batch model.Batch[R]) [][]any {
	rows := make([][]any, 0, batch.Len())
	for _, r := range batch.Records {
		row := w.table.Row(r)
		row = append(row, batch.LoadTimestamp, batch.ID)
		rows = append(rows, row)
	}
	return rows
}

func (w *TableWriter[R]) identifier() pgx.Identifier {
	return pgx.Identifier{w.ref.Dataset, w.ref.Table}
}

func (w *TableWriter[R]) columns() []Column {
	cols := make([]Column, 0, len(w.table.Columns)+len(stampColumns))
	cols = append(cols, w.table.Columns...)
	return append(cols, stampColumns...)
}

func (w *TableWriter[R]) columnNames() []string {
	cols := w.columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func (w *TableWriter[R]) ddl() []string {
	defs := make([]string, 0, len(w.columns()))
	for _, c := range w.columns() {
		defs = append(defs, pgx.Identifier{c.Name}.Sanitize()+" "+c.Type+" NOT NULL")
	}

	stmts := []string{
		"CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{w.ref.Dataset}.Sanitize(),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", w.identifier().Sanitize(), strings.Join(defs, ",\n\t")),
	}

	if w.mode == ModeUpsert {
		stmts = append(stmts, fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
			pgx.Identifier{w.ref.Table + "_natural_key"}.Sanitize(),
			w.identifier().Sanitize(),
			sanitizeList(w.table.Key),
		))
	}

	return stmts
}

func (w *TableWriter[R]) mergeSQL() string {
	cols := sanitizeList(w.columnNames())
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO NOTHING",
		w.identifier().Sanitize(),
		cols,
		cols,
		pgx.Identifier{stagingTable}.Sanitize(),
		sanitizeList(w.table.Key),
	)
}

func sanitizeList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = pgx.Identifier{n}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
