package config

import (
	"errors"
	"fmt"

	"github.com/rickgao/energy-data/internal/model"
)

// Validate checks that all required fields are set and values are valid.
func (c *IngestorConfig) Validate() error {
	if c.API.MaxAttempts < 1 {
		return errors.New("api.max_attempts must be >= 1")
	}
	if c.API.RetryDelay < 0 {
		return errors.New("api.retry_delay must be >= 0")
	}
	if c.API.RequestInterval < 0 {
		return errors.New("api.request_interval must be >= 0")
	}

	if err := c.Database.Warehouse.validate("database.warehouse"); err != nil {
		return err
	}
	if c.Database.Dataset == "" {
		return errors.New("database.dataset is required")
	}

	if len(c.Jobs) == 0 {
		return errors.New("at least one job is required")
	}
	seen := make(map[string]bool, len(c.Jobs))
	for i, j := range c.Jobs {
		prefix := fmt.Sprintf("jobs[%d]", i)
		if err := j.validate(prefix); err != nil {
			return err
		}
		if seen[j.Name] {
			return fmt.Errorf("%s.name %q is duplicated", prefix, j.Name)
		}
		seen[j.Name] = true

		if j.Kind == KindLoad && c.API.Token == "" {
			return fmt.Errorf("api.token is required by %s job %q", KindLoad, j.Name)
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" && db.PassFile == "" {
		return fmt.Errorf("%s.password or %s.passfile is required", prefix, prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

func (j *JobConfig) validate(prefix string) error {
	if j.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	switch j.Kind {
	case KindPrices, KindDailyAvg, KindLoad:
	default:
		return fmt.Errorf("%s.kind %q must be one of %s, %s, %s", prefix, j.Kind, KindPrices, KindDailyAvg, KindLoad)
	}
	if j.Table == "" {
		return fmt.Errorf("%s.table is required", prefix)
	}
	for _, z := range j.Zones {
		if _, err := model.ParseZone(z); err != nil {
			return fmt.Errorf("%s.zones: %w", prefix, err)
		}
	}
	if j.LookbackDays < 1 {
		return fmt.Errorf("%s.lookback_days must be >= 1", prefix)
	}
	if _, _, err := j.Start(); err != nil {
		return fmt.Errorf("%s.start_date must be YYYY-MM-DD: %w", prefix, err)
	}
	if j.GapPolicy != GapHalt && j.GapPolicy != GapSkip {
		return fmt.Errorf("%s.gap_policy %q must be %s or %s", prefix, j.GapPolicy, GapHalt, GapSkip)
	}
	if j.WriteMode != WriteAppend && j.WriteMode != WriteUpsert {
		return fmt.Errorf("%s.write_mode %q must be %s or %s", prefix, j.WriteMode, WriteAppend, WriteUpsert)
	}
	return nil
}
