package config

import (
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/compression"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/logger"
	"github.com/ajitpratap0/tabula/pkg/profiling"
	"github.com/ajitpratap0/tabula/pkg/schema"
)

// Config is the complete tabula configuration
type Config struct {
	// GroupBy settings control composite key construction
	GroupBy GroupByConfig `yaml:"groupby" json:"groupby"`

	// Load settings control how raw values become columns
	Load LoadConfig `yaml:"load" json:"load"`

	// Logging configures the zap logger
	Logging logger.Config `yaml:"logging" json:"logging"`

	// Metrics configures the prometheus collector
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Tracing configures the OpenTelemetry tracer
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`

	// IO controls how table files are read and written
	IO IOConfig `yaml:"io" json:"io"`

	// Profiling names pprof output files
	Profiling profiling.Config `yaml:"profiling" json:"profiling"`
}

// GroupByConfig contains composite key settings
type GroupByConfig struct {
	// Separator joins the components of multi-column keys. Text keys that
	// contain it may collide; pick a byte sequence absent from the data.
	Separator string `yaml:"separator" json:"separator"`
}

// LoadConfig contains loader-boundary settings
type LoadConfig struct {
	// CategoricalThreshold stores a text column as categorical when its
	// distinct/non-null ratio is below the value; 0 disables
	CategoricalThreshold float64 `yaml:"categorical_threshold" json:"categorical_threshold"`
}

// IOConfig contains file input/output settings
type IOConfig struct {
	// MemoryMap reads uncompressed inputs through a read-only mapping
	MemoryMap bool `yaml:"memory_map" json:"memory_map"`
	// CompressionLevel applies to compressed outputs: fastest, default,
	// better or best
	CompressionLevel string `yaml:"compression_level" json:"compression_level"`
	// InferSampleSize is the number of JSON records inspected when no
	// schema is given; 0 inspects all
	InferSampleSize int `yaml:"infer_sample_size" json:"infer_sample_size"`
}

// MetricsConfig contains prometheus settings
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// TracingConfig contains OpenTelemetry settings
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	ServiceName string `yaml:"service_name" json:"service_name"`
}

// Default returns a Config with the engine defaults
func Default() *Config {
	return &Config{
		GroupBy: GroupByConfig{
			Separator: columnar.DefaultSeparator,
		},
		Load: LoadConfig{
			CategoricalThreshold: columnar.DefaultCategoricalThreshold,
		},
		Logging: logger.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "tabula",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "tabula",
		},
		IO: IOConfig{
			MemoryMap:        true,
			CompressionLevel: "default",
			InferSampleSize:  schema.DefaultSampleSize,
		},
	}
}

// Validate checks the configuration for correctness
func (c *Config) Validate() error {
	if c.GroupBy.Separator == "" {
		return errors.New(errors.ErrorTypeConfig, "groupby.separator must not be empty")
	}
	if t := c.Load.CategoricalThreshold; t < 0 || t > 1 {
		return errors.New(errors.ErrorTypeConfig, "load.categorical_threshold must be within [0, 1]").
			WithDetail("value", t)
	}
	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		return errors.New(errors.ErrorTypeConfig, "logging.encoding must be json or console").
			WithDetail("value", c.Logging.Encoding)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return errors.New(errors.ErrorTypeConfig, "metrics.namespace is required when metrics are enabled")
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		return errors.New(errors.ErrorTypeConfig, "tracing.service_name is required when tracing is enabled")
	}
	if _, err := compression.ParseLevel(c.IO.CompressionLevel); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "io.compression_level is invalid").
			WithDetail("value", c.IO.CompressionLevel)
	}
	if c.IO.InferSampleSize < 0 {
		return errors.New(errors.ErrorTypeConfig, "io.infer_sample_size must not be negative").
			WithDetail("value", c.IO.InferSampleSize)
	}
	return nil
}

// CompressionLevel returns the parsed output compression level
func (c *Config) CompressionLevel() compression.Level {
	level, err := compression.ParseLevel(c.IO.CompressionLevel)
	if err != nil {
		return compression.Default
	}
	return level
}

// LoadOptions returns the loader options for columnar builders
func (c *Config) LoadOptions() columnar.LoadOptions {
	return columnar.LoadOptions{CategoricalThreshold: c.Load.CategoricalThreshold}
}
