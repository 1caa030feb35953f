package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/energy-data/internal/config"
	"github.com/rickgao/energy-data/internal/model"
	"github.com/rickgao/energy-data/internal/watermark"
)

func boolPtr(b bool) *bool { return &b }

func testDeps() Deps {
	client := testClient("http://127.0.0.1:0")
	return Deps{
		Prices:    client,
		Load:      client,
		Watermark: fakeWatermark{},
		Project:   "energy",
		Dataset:   "Energy_Data",
	}
}

func TestNewJob_Kinds(t *testing.T) {
	tests := []struct {
		kind       string
		table      string
		wantColumn string
	}{
		{config.KindPrices, "spot_prices", "date"},
		{config.KindDailyAvg, "sweden_daily_avg", "date"},
		{config.KindLoad, "load_data", "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			job, err := NewJob(config.JobConfig{
				Name:         tt.kind,
				Kind:         tt.kind,
				Table:        tt.table,
				Zones:        []string{"SE1", "se4"},
				LookbackDays: 10,
				IncludeToday: boolPtr(tt.kind != config.KindLoad),
				GapPolicy:    config.GapSkip,
				WriteMode:    config.WriteUpsert,
			}, testDeps())
			require.NoError(t, err)
			assert.Equal(t, tt.kind, job.Name())

			var cfg Config
			switch in := job.(type) {
			case *Ingestor[model.PriceRecord, model.PriceRecord]:
				cfg = in.cfg
			case *Ingestor[model.PriceRecord, model.DailyPrice]:
				cfg = in.cfg
			case *Ingestor[model.LoadRecord, model.LoadRecord]:
				cfg = in.cfg
			default:
				t.Fatalf("unexpected job type %T", job)
			}

			assert.Equal(t, model.TableRef{Project: "energy", Dataset: "Energy_Data", Table: tt.table}, cfg.Table)
			assert.Equal(t, tt.wantColumn, cfg.WatermarkColumn)
			assert.Equal(t, []model.Zone{model.SE1, model.SE4}, cfg.Zones)
			assert.Equal(t, watermark.Policy{LookbackDays: 10}, cfg.Policy)
			assert.Equal(t, tt.kind != config.KindLoad, cfg.IncludeToday)
			assert.Equal(t, GapSkip, cfg.GapPolicy)
		})
	}
}

func TestNewJob_StartDate(t *testing.T) {
	job, err := NewJob(config.JobConfig{
		Name:      "prices",
		Kind:      config.KindPrices,
		Table:     "spot_prices",
		Zones:     []string{"SE3"},
		StartDate: "2023-06-01",
	}, testDeps())
	require.NoError(t, err)

	in := job.(*Ingestor[model.PriceRecord, model.PriceRecord])
	assert.Equal(t, date(2023, 6, 1), in.cfg.Policy.StartDate)
	assert.True(t, in.cfg.IncludeToday)
	assert.Equal(t, GapHalt, in.cfg.GapPolicy)
}

func TestNewJob_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.JobConfig
	}{
		{"unknown kind", config.JobConfig{Name: "x", Kind: "generation", Zones: []string{"SE1"}}},
		{"unknown zone", config.JobConfig{Name: "x", Kind: config.KindPrices, Zones: []string{"NO1"}}},
		{"bad start date", config.JobConfig{Name: "x", Kind: config.KindPrices, Zones: []string{"SE1"}, StartDate: "01/06/2023"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJob(tt.cfg, testDeps())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "job x")
		})
	}
}

func TestDeduplicate_UnknownKind(t *testing.T) {
	_, err := Deduplicate(context.Background(), config.JobConfig{Name: "x", Kind: "generation"}, testDeps())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown kind "generation"`)
}
