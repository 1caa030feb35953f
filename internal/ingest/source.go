package ingest

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/rickgao/energy-data/internal/api"
	"github.com/rickgao/energy-data/internal/model"
)

// Source fetches one day of records for one zone. The returned sequence is
// finite and may be ranged over once.
type Source[R any] interface {
	Fetch(ctx context.Context, zone model.Zone, day time.Time) (iter.Seq[R], error)
}

// PriceFetcher is satisfied by *api.Client.
type PriceFetcher interface {
	GetPrices(ctx context.Context, day time.Time, zone model.Zone) ([]api.PricePoint, error)
}

// LoadFetcher is satisfied by *api.Client.
type LoadFetcher interface {
	GetLoad(ctx context.Context, domain string, start, end time.Time) (*api.LoadDocument, error)
}

// PriceSource reads hourly prices from the retail price API.
type PriceSource struct {
	client PriceFetcher
}

// NewPriceSource creates a PriceSource.
func NewPriceSource(client PriceFetcher) *PriceSource {
	return &PriceSource{client: client}
}

// Fetch implements Source.
func (s *PriceSource) Fetch(ctx context.Context, zone model.Zone, day time.Time) (iter.Seq[model.PriceRecord], error) {
	points, err := s.client.GetPrices(ctx, day, zone)
	if err != nil {
		return nil, err
	}

	records, err := api.ToPriceRecords(points, zone)
	if err != nil {
		return nil, err
	}
	return slices.Values(records), nil
}

// LoadSource reads realised total load from ENTSO-E.
type LoadSource struct {
	client LoadFetcher
	logger *slog.Logger
}

// NewLoadSource creates a LoadSource.
func NewLoadSource(client LoadFetcher, logger *slog.Logger) *LoadSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadSource{client: client, logger: logger}
}

// Fetch implements Source. The zone's area is queried over the UTC day
// [day, day+1). An acknowledgement document means there is no data for the
// day and yields an empty sequence.
func (s *LoadSource) Fetch(ctx context.Context, zone model.Zone, day time.Time) (iter.Seq[model.LoadRecord], error) {
	start := model.DateOf(day)
	end := start.AddDate(0, 0, 1)

	doc, err := s.client.GetLoad(ctx, zone.Domain(), start, end)
	if err != nil {
		var ack *api.AcknowledgementError
		if errors.As(err, &ack) {
			s.logger.Info("no load data",
				"zone", zone,
				"day", start.Format(time.DateOnly),
				"code", ack.Code,
				"reason", ack.Reason,
			)
			return slices.Values([]model.LoadRecord(nil)), nil
		}
		return nil, err
	}

	records, err := doc.ToRecords(zone.Domain())
	if err != nil {
		return nil, err
	}
	return slices.Values(records), nil
}
