// Package writer implements the batch loader for every destination table.
//
// Tables:
//   - spot_prices: hourly retail prices
//   - sweden_daily_avg: daily mean price per zone
//   - load_data: realised total load points
//
// Loads are append-only and never update a row. Each batch lands in one atomic
// operation and every row carries the batch's load_timestamp and batch_id.
// Prices and quantities are stored as NUMERIC. Dedupe is the only delete, used
// to repair tables after overlapping append-mode runs.
package writer
