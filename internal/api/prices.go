package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rickgao/energy-data/internal/model"
)

// GetPrices fetches one day of prices for a zone from the retail price API.
// day is interpreted as a calendar date; its clock and location are ignored.
func (c *Client) GetPrices(ctx context.Context, day time.Time, zone model.Zone) ([]PricePoint, error) {
	path := fmt.Sprintf("/%d/%02d-%02d_%s.json", day.Year(), int(day.Month()), day.Day(), zone)

	body, err := c.doWithRetry(ctx, path, nil, "application/json")
	if err != nil {
		return nil, fmt.Errorf("get prices %s %s: %w", zone, day.Format(time.DateOnly), err)
	}

	var points []PricePoint
	if err := json.Unmarshal(body, &points); err != nil {
		return nil, fmt.Errorf("unmarshal prices: %w", err)
	}

	return points, nil
}
