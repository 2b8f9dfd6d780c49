// Package config loads NetGraph's operational configuration: logging,
// metrics, tracing, and the engine's default worker-pool sizing. It does
// NOT parse the blueprint/adjacency DSL that builds a Network, nor the
// failure-policy YAML (see internal/policyio) — those are consumed as
// already-built Go values by the engine, per the core/driver split.
package config

import "time"

// Config is the root operational configuration.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Engine  EngineConfig  `koanf:"engine"`
}

// AppConfig carries general application identity.
type AppConfig struct {
	Name        string `koanf:"name"`
	Environment string `koanf:"environment"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	Output     string `koanf:"output"`
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig configures pkg/metrics.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig configures pkg/telemetry.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// EngineConfig carries the Monte Carlo engine's default run parameters.
// These are defaults only: a caller constructing an engine.FailureManager
// programmatically may override every field per-run.
type EngineConfig struct {
	Iterations      int           `koanf:"iterations"`
	Parallelism     int           `koanf:"parallelism"`
	Baseline        bool          `koanf:"baseline"`
	StorePatterns   bool          `koanf:"store_patterns"`
	IterationTimeout time.Duration `koanf:"iteration_timeout"`
}

// Validate checks the configuration for internally-consistent values.
func (c *Config) Validate() error {
	if c.Engine.Parallelism < 0 {
		return errInvalidParallelism
	}
	if c.Engine.Iterations < 0 {
		return errInvalidIterations
	}
	return nil
}
