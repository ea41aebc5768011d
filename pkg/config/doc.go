// Package config provides the engine configuration for tabula.
// It defines a single Config structure threaded explicitly into the loaders,
// the grouping engine and the observers; nothing is held in package globals.
//
// The configuration is organized into logical sections:
//   - GroupBy: composite key construction
//   - Load: loader-boundary column building
//   - Logging: zap logger settings
//   - Metrics: prometheus collector settings
//   - Tracing: OpenTelemetry tracer settings
//
// Example usage:
//
//	cfg := config.Default()
//	cfg.GroupBy.Separator = "\x1f"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Key Features
//
// - Config: one structure for grouping, loading, logging, metrics and tracing
// - Environment variable substitution with ${VAR_NAME} syntax
// - Defaults for every section; a file only overrides what it names
// - Validation reporting config errors from pkg/errors
//
// # Usage
//
// ## Loading a File
//
//	cfg, err := config.Load("tabula.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	tbl, err := table.FromRows(schema, rows, cfg.LoadOptions())
//	groups, err := tbl.GroupByWithSeparator(cfg.GroupBy.Separator, "country")
//
// ## Environment Variable Substitution
//
//	logging:
//	  level: ${TABULA_LOG_LEVEL}
//
// Unset variables substitute as the empty string, which then fails
// validation where the field is required.
//
// # File Layout
//
//	groupby:
//	  separator: "|"
//	load:
//	  categorical_threshold: 0.5
//	logging:
//	  level: info
//	  encoding: json
//	metrics:
//	  enabled: true
//	  namespace: tabula
//	tracing:
//	  enabled: false
//	  service_name: tabula
package config
