package ingest

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/energy-data/internal/aggregate"
	"github.com/rickgao/energy-data/internal/model"
	"github.com/rickgao/energy-data/internal/watermark"
	"github.com/rickgao/energy-data/internal/writer"
)

// fakeSource returns one record per (day, zone) unless the key is listed in fail.
type fakeSource struct {
	fail    map[string]bool
	calls   []string
	onFetch func()
}

func key(day time.Time, zone model.Zone) string {
	return day.Format(time.DateOnly) + "/" + string(zone)
}

func (s *fakeSource) Fetch(_ context.Context, zone model.Zone, day time.Time) (iter.Seq[model.PriceRecord], error) {
	k := key(day, zone)
	s.calls = append(s.calls, k)
	if s.onFetch != nil {
		s.onFetch()
	}
	if s.fail[k] {
		return nil, fmt.Errorf("fetch %s: max attempts exceeded", k)
	}
	return slices.Values([]model.PriceRecord{{
		Date:      day,
		Timestamp: day,
		Zone:      zone,
		Price:     decimal.NewFromInt(1),
	}}), nil
}

// memSink keeps every appended batch.
type memSink[W any] struct {
	batches []model.Batch[W]
	ensured int
	err     error
}

func (s *memSink[W]) EnsureTable(context.Context) error {
	s.ensured++
	return nil
}

func (s *memSink[W]) Append(_ context.Context, b model.Batch[W]) (writer.Result, error) {
	if s.err != nil {
		return writer.Result{}, s.err
	}
	s.batches = append(s.batches, b)
	return writer.Result{Inserted: int64(b.Len())}, nil
}

func (s *memSink[W]) rows() []W {
	var rows []W
	for _, b := range s.batches {
		rows = append(rows, b.Records...)
	}
	return rows
}

type fakeWatermark struct {
	latest time.Time
	ok     bool
}

func (w fakeWatermark) Latest(context.Context, model.TableRef, string) (time.Time, bool) {
	return w.latest, w.ok
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestIngestor[W any](cfg Config, src Source[model.PriceRecord], transform func([]model.PriceRecord) []W, sink Sink[W], wm Watermark, now time.Time) *Ingestor[model.PriceRecord, W] {
	in := New(cfg, src, transform, sink, wm, nil)
	in.now = func() time.Time { return now }
	return in
}

var threeZones = []model.Zone{model.SE1, model.SE2, model.SE3}

func TestRun_EndToEndSE1(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2024/01-01_SE1.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"time_start":"2024-01-01T00:00:00Z","SEK_per_kWh":1.25}]`)
	}))
	defer server.Close()

	runAt := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	cfg := Config{
		Name:            "prices",
		Table:           model.TableRef{Project: "energy", Dataset: "Energy_Data", Table: "spot_prices"},
		WatermarkColumn: "date",
		Zones:           []model.Zone{model.SE1},
		Policy:          watermark.Policy{LookbackDays: 10, StartDate: date(2024, 1, 1)},
		IncludeToday:    true,
	}
	sink := &memSink[model.PriceRecord]{}
	in := newTestIngestor(cfg, NewPriceSource(testClient(server.URL)), Identity[model.PriceRecord], sink, fakeWatermark{}, runAt)

	report, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Failed())
	assert.Equal(t, 1, report.Requests)
	assert.Equal(t, int64(1), report.Rows)

	require.Len(t, sink.batches, 1)
	batch := sink.batches[0]
	require.Equal(t, 1, batch.Len())
	assert.True(t, batch.LoadTimestamp.Equal(runAt))

	rec := batch.Records[0]
	assert.True(t, rec.Timestamp.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, rec.Price.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, model.SE1, rec.Zone)
	assert.Equal(t, date(2024, 1, 1), rec.Date)
}

func TestRun_AppendRerunDuplicatesRows(t *testing.T) {
	cfg := Config{
		Name:         "prices",
		Zones:        threeZones,
		Policy:       watermark.Policy{StartDate: date(2024, 1, 1)},
		IncludeToday: true,
	}
	sink := &memSink[model.PriceRecord]{}

	// The watermark never advances, as when the destination cannot be read.
	first := newTestIngestor(cfg, &fakeSource{}, Identity[model.PriceRecord], sink, fakeWatermark{}, time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC))
	second := newTestIngestor(cfg, &fakeSource{}, Identity[model.PriceRecord], sink, fakeWatermark{}, time.Date(2024, 1, 2, 7, 0, 0, 0, time.UTC))

	_, err := first.Run(context.Background())
	require.NoError(t, err)
	_, err = second.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.batches, 2)
	assert.NotEqual(t, sink.batches[0].ID, sink.batches[1].ID)
	assert.NotEqual(t, sink.batches[0].LoadTimestamp, sink.batches[1].LoadTimestamp)

	counts := make(map[string]int)
	for _, r := range sink.rows() {
		counts[key(r.Date, r.Zone)]++
	}
	assert.Len(t, counts, 6)
	for k, n := range counts {
		assert.Equal(t, 2, n, "row %s", k)
	}
}

func TestRun_WatermarkRange(t *testing.T) {
	tests := []struct {
		name         string
		wm           fakeWatermark
		policy       watermark.Policy
		includeToday bool
		wantFrom     time.Time
		wantTo       time.Time
		wantDays     int
	}{
		{
			name:         "resumes after latest loaded day",
			wm:           fakeWatermark{latest: date(2024, 1, 3), ok: true},
			policy:       watermark.Policy{LookbackDays: 10},
			includeToday: true,
			wantFrom:     date(2024, 1, 4),
			wantTo:       date(2024, 1, 5),
			wantDays:     2,
		},
		{
			name:         "empty table uses lookback",
			policy:       watermark.Policy{LookbackDays: 10},
			includeToday: false,
			wantFrom:     date(2023, 12, 26),
			wantTo:       date(2024, 1, 4),
			wantDays:     10,
		},
		{
			name:         "empty table uses start date",
			policy:       watermark.Policy{LookbackDays: 10, StartDate: date(2024, 1, 1)},
			includeToday: true,
			wantFrom:     date(2024, 1, 1),
			wantTo:       date(2024, 1, 5),
			wantDays:     5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Name:         "prices",
				Zones:        threeZones,
				Policy:       tt.policy,
				IncludeToday: tt.includeToday,
			}
			src := &fakeSource{}
			sink := &memSink[model.PriceRecord]{}
			in := newTestIngestor(cfg, src, Identity[model.PriceRecord], sink, tt.wm, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC))

			report, err := in.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantFrom, report.From)
			assert.Equal(t, tt.wantTo, report.To)
			assert.Equal(t, tt.wantDays, report.Days)
			assert.Equal(t, tt.wantDays*len(threeZones), report.Requests)
			assert.Equal(t, key(tt.wantFrom, model.SE1), src.calls[0])
			assert.Equal(t, key(tt.wantTo, model.SE3), src.calls[len(src.calls)-1])
		})
	}
}

func TestRun_UpToDate(t *testing.T) {
	cfg := Config{Name: "load", Zones: threeZones, Policy: watermark.Policy{LookbackDays: 10}}
	src := &fakeSource{}
	sink := &memSink[model.PriceRecord]{}
	wm := fakeWatermark{latest: date(2024, 1, 4), ok: true}
	in := newTestIngestor(cfg, src, Identity[model.PriceRecord], sink, wm, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC))

	report, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Days)
	assert.Empty(t, src.calls)
	assert.Zero(t, sink.ensured)
}

func TestRun_DaysAndZonesInOrder(t *testing.T) {
	cfg := Config{
		Name:         "prices",
		Zones:        []model.Zone{model.SE4, model.SE1},
		Policy:       watermark.Policy{StartDate: date(2024, 1, 1)},
		IncludeToday: true,
	}
	src := &fakeSource{}
	in := newTestIngestor(cfg, src, Identity[model.PriceRecord], &memSink[model.PriceRecord]{}, fakeWatermark{}, date(2024, 1, 2))

	_, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2024-01-01/SE4", "2024-01-01/SE1",
		"2024-01-02/SE4", "2024-01-02/SE1",
	}, src.calls)
}

func TestRun_GapPolicy(t *testing.T) {
	fail := map[string]bool{"2024-01-02/SE2": true}

	tests := []struct {
		name         string
		policy       GapPolicy
		wantRequests int
		wantRecords  int
		wantDays     int
		wantHalted   time.Time
	}{
		{
			name:         "halt drops the failed day and stops",
			policy:       GapHalt,
			wantRequests: 5, // day 1: 3, day 2: SE1 then the failing SE2
			wantRecords:  3,
			wantDays:     2,
			wantHalted:   date(2024, 1, 2),
		},
		{
			name:         "skip keeps everything else",
			policy:       GapSkip,
			wantRequests: 9,
			wantRecords:  8,
			wantDays:     3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Name:         "prices",
				Zones:        threeZones,
				Policy:       watermark.Policy{StartDate: date(2024, 1, 1)},
				IncludeToday: true,
				GapPolicy:    tt.policy,
			}
			sink := &memSink[model.PriceRecord]{}
			in := newTestIngestor(cfg, &fakeSource{fail: fail}, Identity[model.PriceRecord], sink, fakeWatermark{}, date(2024, 1, 3))

			report, err := in.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantRequests, report.Requests)
			assert.Equal(t, tt.wantRecords, report.Records)
			assert.Equal(t, tt.wantDays, report.Days)
			assert.Equal(t, 1, report.Failures)
			assert.Equal(t, tt.wantHalted, report.HaltedAt)
			assert.True(t, report.Failed())

			require.Len(t, sink.batches, 1)
			assert.Equal(t, tt.wantRecords, sink.batches[0].Len())
			if tt.policy == GapHalt {
				for _, r := range sink.rows() {
					assert.Equal(t, date(2024, 1, 1), r.Date)
				}
			}
		})
	}
}

func TestRun_DefaultsToHalt(t *testing.T) {
	in := New(Config{Name: "prices"}, &fakeSource{}, Identity[model.PriceRecord], &memSink[model.PriceRecord]{}, fakeWatermark{}, nil)
	assert.Equal(t, GapHalt, in.cfg.GapPolicy)
}

func TestRun_LoadFailureIsReported(t *testing.T) {
	cfg := Config{
		Name:         "prices",
		Zones:        threeZones,
		Policy:       watermark.Policy{StartDate: date(2024, 1, 1)},
		IncludeToday: true,
	}
	sink := &memSink[model.PriceRecord]{err: errors.New("permission denied for schema Energy_Data")}
	in := newTestIngestor(cfg, &fakeSource{}, Identity[model.PriceRecord], sink, fakeWatermark{}, date(2024, 1, 1))

	report, err := in.Run(context.Background())
	require.NoError(t, err)
	require.Error(t, report.LoadErr)
	assert.True(t, report.Failed())
	assert.Zero(t, report.Rows)
	assert.Equal(t, 3, report.Records)
}

func TestRun_CancelledBeforeLoad(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := Config{
		Name:         "prices",
		Zones:        threeZones,
		Policy:       watermark.Policy{StartDate: date(2024, 1, 1)},
		IncludeToday: true,
	}
	sink := &memSink[model.PriceRecord]{}
	in := newTestIngestor(cfg, &fakeSource{onFetch: cancel}, Identity[model.PriceRecord], sink, fakeWatermark{}, date(2024, 1, 1))

	_, err := in.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sink.ensured)
	assert.Empty(t, sink.batches)
}

func TestRun_DailyAverage(t *testing.T) {
	day := date(2024, 1, 1)
	src := sliceSource{
		{Date: day, Timestamp: day, Zone: model.SE1, Price: decimal.RequireFromString("1.00")},
		{Date: day, Timestamp: day.Add(time.Hour), Zone: model.SE1, Price: decimal.RequireFromString("2.00")},
	}
	cfg := Config{
		Name:         "daily-avg",
		Zones:        []model.Zone{model.SE1},
		Policy:       watermark.Policy{StartDate: day},
		IncludeToday: true,
	}
	sink := &memSink[model.DailyPrice]{}
	in := newTestIngestor(cfg, src, aggregate.Daily, sink, fakeWatermark{}, day)

	report, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Records)
	assert.Equal(t, int64(1), report.Rows)

	rows := sink.rows()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].AvgPrice.Equal(decimal.RequireFromString("1.5")))
}

// sliceSource returns the same records for every fetch.
type sliceSource []model.PriceRecord

func (s sliceSource) Fetch(context.Context, model.Zone, time.Time) (iter.Seq[model.PriceRecord], error) {
	return slices.Values(s), nil
}
