// Package aggregate reduces hourly price records to daily means.
package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/energy-data/internal/model"
)

// MeanPlaces is the number of decimal places daily means are rounded to.
const MeanPlaces = 6

type dayZone struct {
	date time.Time
	zone model.Zone
}

type sum struct {
	total decimal.Decimal
	count int64
}

// Daily groups records by (date, zone) and returns the arithmetic mean price of
// each group, ordered by date then zone. Empty input yields nil.
//
// Means are rounded half away from zero to MeanPlaces decimals so the stored
// NUMERIC stays bounded; 1, 0, 0 averages to 0.333333, not a repeating value.
func Daily(records []model.PriceRecord) []model.DailyPrice {
	if len(records) == 0 {
		return nil
	}

	groups := make(map[dayZone]*sum)
	for _, r := range records {
		key := dayZone{date: r.Date, zone: r.Zone}
		s, ok := groups[key]
		if !ok {
			s = &sum{total: decimal.Zero}
			groups[key] = s
		}
		s.total = s.total.Add(r.Price)
		s.count++
	}

	out := make([]model.DailyPrice, 0, len(groups))
	for key, s := range groups {
		out = append(out, model.DailyPrice{
			Date:     key.date,
			Zone:     key.zone,
			AvgPrice: s.total.DivRound(decimal.NewFromInt(s.count), MeanPlaces),
		})
	}

	slices.SortFunc(out, func(a, b model.DailyPrice) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Zone, b.Zone)
	})

	return out
}
