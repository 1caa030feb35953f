package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/energy-data/internal/model"
)

// ParseTimestamp parses the timestamp formats used upstream: RFC 3339 from the
// price API and minute-precision "2006-01-02T15:04Z" from ENTSO-E.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02T15:04Z07:00", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// ToRecord converts a PricePoint to a model.PriceRecord, copying the SEK price
// and start time verbatim. A missing or null price is an error, never zero.
func (p PricePoint) ToRecord(zone model.Zone) (model.PriceRecord, error) {
	if !p.SEKPerKWh.Valid {
		return model.PriceRecord{}, fmt.Errorf("SEK_per_kWh: missing")
	}

	ts, err := ParseTimestamp(p.TimeStart)
	if err != nil {
		return model.PriceRecord{}, fmt.Errorf("time_start: %w", err)
	}

	return model.PriceRecord{
		Date:      model.DateOf(ts),
		Timestamp: ts,
		Zone:      zone,
		Price:     p.SEKPerKWh.Decimal,
	}, nil
}

// ToPriceRecords converts a price response. One bad item fails the whole response.
func ToPriceRecords(points []PricePoint, zone model.Zone) ([]model.PriceRecord, error) {
	records := make([]model.PriceRecord, 0, len(points))
	for i, p := range points {
		r, err := p.ToRecord(zone)
		if err != nil {
			return nil, fmt.Errorf("price %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// ToRecords walks TimeSeries -> Period -> Point and converts every point to a
// model.LoadRecord tagged with domain. One bad point fails the whole document.
func (d *LoadDocument) ToRecords(domain string) ([]model.LoadRecord, error) {
	var records []model.LoadRecord

	for _, ts := range d.TimeSeries {
		for _, period := range ts.Periods {
			start, err := ParseTimestamp(period.Start)
			if err != nil {
				return nil, fmt.Errorf("timeseries %s period start: %w", ts.MRID, err)
			}

			for _, pt := range period.Points {
				position, err := strconv.Atoi(strings.TrimSpace(pt.Position))
				if err != nil {
					return nil, fmt.Errorf("timeseries %s position %q: %w", ts.MRID, pt.Position, err)
				}
				quantity, err := decimal.NewFromString(strings.TrimSpace(pt.Quantity))
				if err != nil {
					return nil, fmt.Errorf("timeseries %s quantity %q: %w", ts.MRID, pt.Quantity, err)
				}

				records = append(records, model.LoadRecord{
					Zone:      domain,
					Timestamp: start,
					Position:  position,
					Quantity:  quantity,
				})
			}
		}
	}

	return records, nil
}
