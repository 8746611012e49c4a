// Package config loads the YAML configuration of the bianchi command.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexshd/bianchi"
)

// Config is the top-level configuration file.
type Config struct {
	Model      ModelConfig      `yaml:"model"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Simulation SimulationConfig `yaml:"simulation"`
	Log        LogConfig        `yaml:"log"`
	Report     ReportConfig     `yaml:"report"`
}

// ModelConfig holds the MAC/PHY parameters. Durations use Go syntax, e.g. "2870us".
type ModelConfig struct {
	CWMin      uint32        `yaml:"cw_min"`
	CWMax      uint32        `yaml:"cw_max"`
	MaxRetries int           `yaml:"max_retries"`
	TSuccess   time.Duration `yaml:"t_success"`
	TCollision time.Duration `yaml:"t_collision"`
	TEmpty     time.Duration `yaml:"t_empty"`
	FrameBytes int           `yaml:"frame_bytes"`
}

// SweepConfig selects the station counts and the root finder.
type SweepConfig struct {
	Stations   []int   `yaml:"stations"`
	Strategy   string  `yaml:"strategy"`
	Tolerance  float64 `yaml:"tolerance"`
	Workers    int     `yaml:"workers"`
	CrossCheck bool    `yaml:"cross_check"`
}

// SimulationConfig enables the slot-level simulator.
type SimulationConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Duration     time.Duration `yaml:"duration"`
	Replications int           `yaml:"replications"`
	Seed         string        `yaml:"seed"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// ReportConfig selects the optional report outputs.
type ReportConfig struct {
	XLSX        string `yaml:"xlsx"`         // Workbook path
	MetricsFile string `yaml:"metrics_file"` // Prometheus textfile path
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() *Config {
	p := bianchi.DefaultParams()
	return &Config{
		Model: ModelConfig{
			CWMin:      p.CWMin,
			CWMax:      p.CWMax,
			MaxRetries: p.MaxRetries,
			TSuccess:   p.TSuccess,
			TCollision: p.TCollision,
			TEmpty:     p.TEmpty,
			FrameBytes: p.FrameBytes,
		},
		Sweep: SweepConfig{
			Stations: bianchi.DefaultStations(),
			Strategy: bianchi.StrategyBisection,
			Workers:  1,
		},
		Simulation: SimulationConfig{
			Duration:     20 * time.Second,
			Replications: 3,
			Seed:         "dcf",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path on top of DefaultConfig. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration before any computation starts.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("model: %w", err)
	}

	if len(c.Sweep.Stations) == 0 {
		return fmt.Errorf("sweep.stations: at least one station count required")
	}
	for _, n := range c.Sweep.Stations {
		if n < 1 {
			return fmt.Errorf("sweep.stations: %w: got %d", bianchi.ErrInvalidStationCount, n)
		}
	}

	switch c.Sweep.Strategy {
	case "", bianchi.StrategyBisection, bianchi.StrategyScan:
	default:
		return fmt.Errorf("sweep.strategy: unknown strategy %q", c.Sweep.Strategy)
	}
	if c.Sweep.Tolerance < 0 || c.Sweep.Tolerance >= 1 {
		return fmt.Errorf("sweep.tolerance: %w: got %g", bianchi.ErrInvalidTolerance, c.Sweep.Tolerance)
	}
	if c.Sweep.Workers < 0 {
		return fmt.Errorf("sweep.workers: must not be negative, got %d", c.Sweep.Workers)
	}

	if c.Simulation.Enabled {
		if c.Simulation.Duration <= 0 {
			return fmt.Errorf("simulation.duration: must be positive, got %v", c.Simulation.Duration)
		}
		if c.Simulation.Replications < 1 {
			return fmt.Errorf("simulation.replications: must be at least 1, got %d", c.Simulation.Replications)
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// Params converts the model section into solver parameters.
func (c *Config) Params() bianchi.Params {
	return bianchi.Params{
		CWMin:      c.Model.CWMin,
		CWMax:      c.Model.CWMax,
		MaxRetries: c.Model.MaxRetries,
		TSuccess:   c.Model.TSuccess,
		TCollision: c.Model.TCollision,
		TEmpty:     c.Model.TEmpty,
		FrameBytes: c.Model.FrameBytes,
	}
}

// SweepConfig converts the sweep and simulation sections.
func (c *Config) SweepConfig() bianchi.SweepConfig {
	return bianchi.SweepConfig{
		Stations:   append([]int(nil), c.Sweep.Stations...),
		Strategy:   c.Sweep.Strategy,
		Tolerance:  c.Sweep.Tolerance,
		Workers:    c.Sweep.Workers,
		CrossCheck: c.Sweep.CrossCheck,
		Simulate:   c.Simulation.Enabled,
		Sim: bianchi.SimConfig{
			Duration:     c.Simulation.Duration,
			Replications: c.Simulation.Replications,
			Seed:         c.Simulation.Seed,
		},
	}
}
