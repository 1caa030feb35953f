package writer

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/rickgao/energy-data/internal/model"
)

// Mode selects how a batch is written.
type Mode string

const (
	// ModeAppend copies every row; re-loading a range duplicates it.
	ModeAppend Mode = "append"

	// ModeUpsert skips rows whose natural key already exists.
	ModeUpsert Mode = "upsert"
)

// Column is a destination column.
type Column struct {
	Name string
	Type string
}

// Table maps records of type R onto a destination table.
type Table[R any] struct {
	Columns []Column      // Data columns, in row order
	Key     []string      // Natural key used by ModeUpsert
	Row     func(R) []any // Encodes a record in Columns order
}

// Columns every table carries after its data columns.
var stampColumns = []Column{
	{Name: "load_timestamp", Type: "TIMESTAMPTZ"},
	{Name: "batch_id", Type: "UUID"},
}

// PriceTable stores hourly retail prices.
var PriceTable = Table[model.PriceRecord]{
	Columns: []Column{
		{Name: "date", Type: "DATE"},
		{Name: "timestamp", Type: "TIMESTAMPTZ"},
		{Name: "zone", Type: "TEXT"},
		{Name: "price", Type: "NUMERIC"},
	},
	Key: []string{"timestamp", "zone"},
	Row: func(r model.PriceRecord) []any {
		return []any{r.Date, r.Timestamp, string(r.Zone), numeric(r.Price)}
	},
}

// DailyPriceTable stores daily mean prices.
var DailyPriceTable = Table[model.DailyPrice]{
	Columns: []Column{
		{Name: "date", Type: "DATE"},
		{Name: "zone", Type: "TEXT"},
		{Name: "avg_price", Type: "NUMERIC"},
	},
	Key: []string{"date", "zone"},
	Row: func(r model.DailyPrice) []any {
		return []any{r.Date, string(r.Zone), numeric(r.AvgPrice)}
	},
}

// LoadTable stores realised load points.
var LoadTable = Table[model.LoadRecord]{
	Columns: []Column{
		{Name: "zone", Type: "TEXT"},
		{Name: "timestamp", Type: "TIMESTAMPTZ"},
		{Name: "position", Type: "INTEGER"},
		{Name: "quantity", Type: "NUMERIC"},
	},
	Key: []string{"zone", "timestamp", "position"},
	Row: func(r model.LoadRecord) []any {
		return []any{r.Zone, r.Timestamp, r.Position, numeric(r.Quantity)}
	},
}

// Result reports the outcome of one Append.
type Result struct {
	Inserted  int64
	Conflicts int64
}

// WriterMetrics holds metrics for a writer.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}

// numeric converts a decimal to pgx's exact NUMERIC representation.
func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}
