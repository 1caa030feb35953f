package writer

import (
	"context"
	"fmt"
)

// Dedupe deletes rows that repeat an earlier row's natural key, keeping the
// first one loaded. It repairs tables written in ModeAppend by overlapping runs.
func (w *TableWriter[R]) Dedupe(ctx context.Context) (int64, error) {
	tag, err := w.db.Exec(ctx, w.dedupeSQL())
	if err != nil {
		return 0, fmt.Errorf("dedupe %s: %w", w.ref, err)
	}

	removed := tag.RowsAffected()
	w.logger.Info("duplicates removed", "rows", removed)
	return removed, nil
}

func (w *TableWriter[R]) dedupeSQL() string {
	return fmt.Sprintf("DELETE FROM %[1]s WHERE ctid IN ("+
		"SELECT ctid FROM ("+
		"SELECT ctid, ROW_NUMBER() OVER (PARTITION BY %[2]s ORDER BY \"load_timestamp\", \"batch_id\") AS rn FROM %[1]s"+
		") ranked WHERE rn > 1)",
		w.identifier().Sanitize(),
		sanitizeList(w.table.Key),
	)
}
