// Package ingest implements the incremental ingestion run.
//
// A run:
//   - Resolves the date range from the destination table's watermark
//   - Fetches every day and zone in order, one request at a time
//   - Reshapes the records (raw or daily mean)
//   - Loads them as a single batch with one load_timestamp
//
// Jobs wire a Source, a transform and a writer.TableWriter together from config.
package ingest
