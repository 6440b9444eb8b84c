// Package config provides the YAML configuration file for lipidkey.
//
// A config file only needs the values it changes; everything else falls back
// to DefaultConfig:
//
//	tolerance: 0.01
//	water_loss_mass: 18.0106
//	workers: 4
//	adduct_table: adducts.csv
//	filter:
//	  top_n: 20
//	  intensity_cutoff: 1
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/LipidKey/pkg/adduct"
	"github.com/ChrisMcGann/LipidKey/pkg/core"
	"github.com/ChrisMcGann/LipidKey/pkg/filter"
)

// Config is the root configuration structure
type Config struct {
	Tolerance     float64      `yaml:"tolerance"`
	WaterLossMass float64      `yaml:"water_loss_mass"`
	Workers       int          `yaml:"workers"`
	AdductTable   string       `yaml:"adduct_table,omitempty"` // empty = built-in positive-mode table
	Filter        FilterConfig `yaml:"filter"`
}

// FilterConfig mirrors filter.Config
type FilterConfig struct {
	TopN            int     `yaml:"top_n"`
	IntensityCutoff float64 `yaml:"intensity_cutoff"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Tolerance:     core.DefaultTolerance,
		WaterLossMass: adduct.WaterMass,
		Workers:       runtime.NumCPU(),
	}
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Tolerance == 0 {
		c.Tolerance = core.DefaultTolerance
	}
	if c.WaterLossMass == 0 {
		c.WaterLossMass = adduct.WaterMass
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Tolerance <= 0 {
		return &core.ValidationError{Field: "tolerance", Message: "must be positive"}
	}
	if c.WaterLossMass <= 0 {
		return &core.ValidationError{Field: "water_loss_mass", Message: "must be positive"}
	}
	if c.Workers < 1 {
		return &core.ValidationError{Field: "workers", Message: "must be at least 1"}
	}
	if c.Filter.TopN < 0 {
		return &core.ValidationError{Field: "filter.top_n", Message: "must not be negative"}
	}
	if c.Filter.IntensityCutoff < 0 || c.Filter.IntensityCutoff > 100 {
		return &core.ValidationError{Field: "filter.intensity_cutoff", Message: "must be between 0 and 100"}
	}
	return nil
}

// PeakFilter returns the peak filter settings
func (c *Config) PeakFilter() *filter.Config {
	return &filter.Config{
		TopN:            c.Filter.TopN,
		IntensityCutoff: c.Filter.IntensityCutoff,
	}
}

// LoadAdductTable returns the built-in positive-mode table, or the table read
// from AdductTable when set.
func (c *Config) LoadAdductTable() (*adduct.Table, error) {
	if c.AdductTable == "" {
		return adduct.PositiveTable(), nil
	}

	f, err := os.Open(c.AdductTable)
	if err != nil {
		return nil, fmt.Errorf("open adduct table: %w", err)
	}
	defer f.Close()

	table := adduct.NewTable()
	if err := table.LoadFromCSV(f); err != nil {
		return nil, fmt.Errorf("%s: %w", c.AdductTable, err)
	}
	return table, nil
}

// NewResolver builds an adduct resolver from the configured table,
// tolerance and water-loss mass.
func (c *Config) NewResolver() (*core.Resolver, error) {
	table, err := c.LoadAdductTable()
	if err != nil {
		return nil, err
	}
	return core.NewResolver(core.ResolverConfig{
		Table:     table,
		Tolerance: c.Tolerance,
		WaterLoss: c.WaterLossMass,
	}), nil
}
