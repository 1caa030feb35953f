package config

import "time"

// IngestorConfig is the root configuration for the ingestor.
type IngestorConfig struct {
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Jobs     []JobConfig    `yaml:"jobs"`
}

// APIConfig holds upstream API settings shared by every job.
type APIConfig struct {
	PricesURL       string        `yaml:"prices_url"` // elprisetjustnu.se price endpoint prefix
	EntsoeURL       string        `yaml:"entsoe_url"` // ENTSO-E transparency REST endpoint
	Token           string        `yaml:"token"`      // ENTSO-E securityToken
	Timeout         time.Duration `yaml:"timeout"`
	MaxAttempts     int           `yaml:"max_attempts"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	RequestInterval time.Duration `yaml:"request_interval"` // minimum spacing between requests
}

// DatabaseConfig holds the warehouse connection and the dataset (schema) tables live in.
type DatabaseConfig struct {
	Warehouse DBConfig `yaml:"warehouse"`
	Dataset   string   `yaml:"dataset"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"` // Also the project part of table references
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	PassFile string `yaml:"passfile"` // pgpass-format credentials file, used when password is empty
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Job kinds.
const (
	KindPrices   = "prices"
	KindDailyAvg = "daily-avg"
	KindLoad     = "load"
)

// Gap policies.
const (
	GapHalt = "halt"
	GapSkip = "skip"
)

// Write modes.
const (
	WriteAppend = "append"
	WriteUpsert = "upsert"
)

// JobConfig describes one ingestion job.
type JobConfig struct {
	Name         string   `yaml:"name"`
	Kind         string   `yaml:"kind"` // prices, daily-avg or load; defaults to Name
	Table        string   `yaml:"table"`
	Zones        []string `yaml:"zones"`
	LookbackDays int      `yaml:"lookback_days"`
	StartDate    string   `yaml:"start_date"`    // YYYY-MM-DD; used instead of the lookback when the table is empty
	IncludeToday *bool    `yaml:"include_today"` // defaults to true for price jobs, false for load
	GapPolicy    string   `yaml:"gap_policy"`
	WriteMode    string   `yaml:"write_mode"`
}

// Start parses StartDate. ok is false when no start date is configured.
func (j JobConfig) Start() (start time.Time, ok bool, err error) {
	if j.StartDate == "" {
		return time.Time{}, false, nil
	}
	start, err = time.Parse(time.DateOnly, j.StartDate)
	if err != nil {
		return time.Time{}, false, err
	}
	return start, true, nil
}

// Job returns the job with the given name.
func (c *IngestorConfig) Job(name string) (JobConfig, bool) {
	for _, j := range c.Jobs {
		if j.Name == name {
			return j, true
		}
	}
	return JobConfig{}, false
}
