// Package config provides the unified configuration system for csvpress.
// It defines a single Config structure shared by the CLI and the pipeline,
// organized into logical sections:
//   - Codec: strategy-selection thresholds for the column codec
//   - Container: generic byte compression applied around the codec blob
//   - Performance: worker counts for parallel column encoding
//   - Observability: logging settings
//
// Example usage:
//
//	cfg := config.DefaultConfig()
//	cfg.Container.Algorithm = "lz4"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"runtime"
)

// Config is the single configuration structure for the tool.
type Config struct {
	// Codec settings control per-column strategy selection
	Codec CodecConfig `yaml:"codec" json:"codec"`

	// Container settings control the outer generic compression envelope
	Container ContainerConfig `yaml:"container" json:"container"`

	// Performance settings control concurrency
	Performance PerformanceConfig `yaml:"performance" json:"performance"`

	// Observability settings for logging
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// CodecConfig contains strategy-selection thresholds for the column codec.
type CodecConfig struct {
	// RunRatio selects run-length encoding when runs/rows falls below it
	RunRatio float64 `yaml:"run_ratio" json:"run_ratio"`
	// DictRatio selects dictionary encoding when distinct/rows falls below or equals it
	DictRatio float64 `yaml:"dict_ratio" json:"dict_ratio"`
}

// ContainerConfig contains settings for the generic compression envelope.
type ContainerConfig struct {
	// Algorithm selects the byte compressor (none, gzip, snappy, lz4, zstd, s2)
	Algorithm string `yaml:"algorithm" json:"algorithm"`
	// Level sets compression ratio vs speed (fastest, default, best)
	Level string `yaml:"level" json:"level"`
}

// PerformanceConfig contains concurrency settings.
type PerformanceConfig struct {
	// Workers defines the number of concurrent column encoders (0 = NumCPU)
	Workers int `yaml:"workers" json:"workers"`
}

// ObservabilityConfig contains logging settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogEncoding selects the log output format (json or console)
	LogEncoding string `yaml:"log_encoding" json:"log_encoding"`
}

// DefaultConfig returns a Config with production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		Codec: CodecConfig{
			RunRatio:  0.5,
			DictRatio: 0.25,
		},
		Container: ContainerConfig{
			Algorithm: "zstd",
			Level:     "default",
		},
		Performance: PerformanceConfig{
			Workers: runtime.NumCPU(),
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogEncoding: "console",
		},
	}
}

// Validate validates the configuration for correctness.
// It checks required fields and ensures values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Codec.RunRatio <= 0 || c.Codec.RunRatio > 1 {
		return fmt.Errorf("codec.run_ratio must be in (0, 1]")
	}
	if c.Codec.DictRatio <= 0 || c.Codec.DictRatio > 1 {
		return fmt.Errorf("codec.dict_ratio must be in (0, 1]")
	}
	switch c.Container.Algorithm {
	case "none", "gzip", "snappy", "lz4", "zstd", "s2":
	default:
		return fmt.Errorf("container.algorithm %q is not supported", c.Container.Algorithm)
	}
	switch c.Container.Level {
	case "fastest", "default", "best":
	default:
		return fmt.Errorf("container.level %q is not supported", c.Container.Level)
	}
	if c.Performance.Workers < 0 {
		return fmt.Errorf("performance.workers cannot be negative")
	}
	return nil
}

// GetWorkers returns the number of workers, ensuring it's at least 1
func (p *PerformanceConfig) GetWorkers() int {
	if p.Workers <= 0 {
		return runtime.NumCPU()
	}
	return p.Workers
}
