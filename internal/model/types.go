package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Zones
// -----------------------------------------------------------------------------

// Zone is a Swedish bidding zone.
type Zone string

const (
	SE1 Zone = "SE1" // Luleå
	SE2 Zone = "SE2" // Sundsvall
	SE3 Zone = "SE3" // Stockholm
	SE4 Zone = "SE4" // Malmö
)

// AllZones lists every zone in fetch order.
var AllZones = []Zone{SE1, SE2, SE3, SE4}

// zoneDomains maps a zone to the ENTSO-E area code queried for it.
var zoneDomains = map[Zone]string{
	SE1: "10YSE-1--------K",
	SE2: "10YSE-2--------K",
	SE3: "10YSE-3--------K",
	SE4: "10YSE-4--------K",
}

// ParseZone parses a zone code, case-insensitively.
func ParseZone(s string) (Zone, error) {
	z := Zone(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := zoneDomains[z]; !ok {
		return "", fmt.Errorf("unknown zone %q", s)
	}
	return z, nil
}

// Domain returns the ENTSO-E EIC area code for the zone.
func (z Zone) Domain() string {
	return zoneDomains[z]
}

func (z Zone) String() string {
	return string(z)
}

// -----------------------------------------------------------------------------
// Records
// -----------------------------------------------------------------------------

// PriceRecord is one price slot from the retail price API.
type PriceRecord struct {
	Date      time.Time       // Calendar date of Timestamp in its own offset
	Timestamp time.Time       // Slot start (time_start)
	Zone      Zone            // Bidding zone
	Price     decimal.Decimal // SEK per kWh
}

// DailyPrice is the arithmetic mean of a zone's prices over one date.
type DailyPrice struct {
	Date     time.Time
	Zone     Zone
	AvgPrice decimal.Decimal // SEK per kWh
}

// LoadRecord is one realised load point from ENTSO-E.
type LoadRecord struct {
	Zone      string          // EIC area code as queried
	Timestamp time.Time       // Period start
	Position  int             // 1-based position within the period
	Quantity  decimal.Decimal // MW
}

// -----------------------------------------------------------------------------
// Batches
// -----------------------------------------------------------------------------

// Batch is the set of rows produced by one ingestion run. Every row is
// written with the same LoadTimestamp and ID.
type Batch[R any] struct {
	ID            uuid.UUID
	LoadTimestamp time.Time
	Records       []R
}

// NewBatch stamps records with a fresh batch id and the given load time.
func NewBatch[R any](records []R, loadTimestamp time.Time) Batch[R] {
	return Batch[R]{
		ID:            uuid.New(),
		LoadTimestamp: loadTimestamp.UTC(),
		Records:       records,
	}
}

// Len returns the number of records in the batch.
func (b Batch[R]) Len() int {
	return len(b.Records)
}

// -----------------------------------------------------------------------------
// Destination
// -----------------------------------------------------------------------------

// TableRef identifies a destination table as project.dataset.table.
// On the Postgres warehouse the project is the database and the dataset is the schema.
type TableRef struct {
	Project string
	Dataset string
	Table   string
}

func (t TableRef) String() string {
	return t.Project + "." + t.Dataset + "." + t.Table
}

// -----------------------------------------------------------------------------
// Dates
// -----------------------------------------------------------------------------

// DateOf truncates t to its calendar date in t's own location, returned at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
