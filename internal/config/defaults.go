package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPricesURL       = "https://www.elprisetjustnu.se/api/v1/prices"
	DefaultEntsoeURL       = "https://web-api.tp.entsoe.eu/api"
	DefaultAPITimeout      = 30 * time.Second
	DefaultMaxAttempts     = 3
	DefaultRetryDelay      = 5 * time.Second
	DefaultRequestInterval = 5 * time.Second
	DefaultDBHost          = "localhost"
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 4
	DefaultMinConns        = 1
	DefaultDataset         = "energy_data"
	DefaultLookbackDays    = 10
	DefaultGapPolicy       = GapHalt
	DefaultWriteMode       = WriteAppend
)

// defaultTables maps each job kind to its destination table.
var defaultTables = map[string]string{
	KindPrices:   "spot_prices",
	KindDailyAvg: "sweden_daily_avg",
	KindLoad:     "load_data",
}

// DefaultJobs are run when the config lists none.
func DefaultJobs() []JobConfig {
	return []JobConfig{
		{Name: KindPrices},
		{Name: KindDailyAvg},
		{Name: KindLoad, Zones: []string{"SE1"}},
	}
}

func (c *IngestorConfig) applyDefaults() {
	// API defaults
	if c.API.PricesURL == "" {
		c.API.PricesURL = DefaultPricesURL
	}
	if c.API.EntsoeURL == "" {
		c.API.EntsoeURL = DefaultEntsoeURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxAttempts == 0 {
		c.API.MaxAttempts = DefaultMaxAttempts
	}
	if c.API.RetryDelay == 0 {
		c.API.RetryDelay = DefaultRetryDelay
	}
	if c.API.RequestInterval == 0 {
		c.API.RequestInterval = DefaultRequestInterval
	}

	// Database defaults
	applyDBDefaults(&c.Database.Warehouse)
	if c.Database.Dataset == "" {
		c.Database.Dataset = DefaultDataset
	}

	// Job defaults
	if len(c.Jobs) == 0 {
		c.Jobs = DefaultJobs()
	}
	for i := range c.Jobs {
		applyJobDefaults(&c.Jobs[i])
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Host == "" {
		db.Host = DefaultDBHost
	}
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

func applyJobDefaults(j *JobConfig) {
	if j.Kind == "" {
		j.Kind = j.Name
	}
	if j.Table == "" {
		j.Table = defaultTables[j.Kind]
	}
	if len(j.Zones) == 0 {
		j.Zones = []string{"SE1", "SE2", "SE3", "SE4"}
	}
	if j.LookbackDays == 0 {
		j.LookbackDays = DefaultLookbackDays
	}
	if j.IncludeToday == nil {
		// Day-ahead prices for today are already published; realised load is not complete.
		includeToday := j.Kind != KindLoad
		j.IncludeToday = &includeToday
	}
	if j.GapPolicy == "" {
		j.GapPolicy = DefaultGapPolicy
	}
	if j.WriteMode == "" {
		j.WriteMode = DefaultWriteMode
	}
}
