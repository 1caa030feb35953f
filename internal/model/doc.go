// Package model defines shared data types used across the energy data ingestor.
//
// Conventions:
//   - Prices: shopspring decimal, SEK per kWh
//   - Quantities: shopspring decimal, MW
//   - Dates: time.Time at midnight UTC carrying the calendar date only
//   - Timestamps: time.Time as reported upstream (offset preserved)
package model
