package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/config"
	"github.com/ajitpratap0/tabula/pkg/logger"
	"github.com/ajitpratap0/tabula/pkg/metrics"
	"github.com/ajitpratap0/tabula/pkg/observability"
	"github.com/ajitpratap0/tabula/pkg/profiling"
	"github.com/ajitpratap0/tabula/pkg/table"
)

var version = "0.1.0"

// app carries the state shared by every subcommand of one invocation
type app struct {
	configFile string
	logLevel   string
	metricsOut bool
	traceOut   bool
	cpuProfile string
	memProfile string
	stats      bool

	cfg      *config.Config
	log      *zap.Logger
	observer table.Observer
	registry *prometheus.Registry
	tracer   *sdktrace.TracerProvider
	profiler *profiling.Profiler

	stdout io.Writer
	stderr io.Writer
}

func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "tabula",
		Short: "tabula - in-memory columnar table engine",
		Long: `tabula loads Arrow IPC or JSON-lines files into an in-memory columnar table
and runs filter, projection, grouping and join operations over them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context(), cmd.Name())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flags.BoolVar(&a.metricsOut, "metrics", false, "Print prometheus metrics to stderr on exit")
	flags.BoolVar(&a.traceOut, "trace", false, "Print OpenTelemetry spans to stderr on exit")
	flags.StringVar(&a.cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")
	flags.StringVar(&a.memProfile, "memprofile", "", "Write a heap profile to this file on exit")
	flags.BoolVar(&a.stats, "stats", false, "Log elapsed time and process resource usage on exit")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tabula v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(
		a.headCommand(),
		a.tailCommand(),
		a.selectCommand(),
		a.groupByCommand(),
		a.filterCommand(),
		a.mergeCommand(),
		a.describeCommand(),
	)

	// PersistentPostRunE does not run after a failed RunE
	for _, cmd := range root.Commands() {
		if run := cmd.RunE; run != nil {
			cmd.RunE = func(cmd *cobra.Command, args []string) error {
				if err := run(cmd, args); err != nil {
					_ = a.teardown(cmd.Context())
					return err
				}
				return nil
			}
		}
	}
	return root
}

// setup loads configuration and wires the logger, metrics and tracing
// observers
func (a *app) setup(ctx context.Context, command string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, logger.CommandKey, command)
	ctx = context.WithValue(ctx, logger.RunIDKey, uuid.NewString())
	cfg := config.Default()
	if a.configFile != "" {
		loaded, err := config.Load(a.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.metricsOut {
		cfg.Metrics.Enabled = true
	}
	if a.traceOut {
		cfg.Tracing.Enabled = true
	}
	if a.cpuProfile != "" {
		cfg.Profiling.CPUProfile = a.cpuProfile
	}
	if a.memProfile != "" {
		cfg.Profiling.MemProfile = a.memProfile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	log := logger.WithContext(ctx)
	a.log = log

	observers := table.MultiObserver{logger.NewObserver(log)}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		collector, err := metrics.NewCollector(cfg.Metrics.Namespace, a.registry)
		if err != nil {
			return err
		}
		observers = append(observers, collector)
	}
	if cfg.Tracing.Enabled {
		tp, err := observability.NewStdoutProvider(cfg.Tracing.ServiceName, a.stderr)
		if err != nil {
			return err
		}
		a.tracer = tp
		observers = append(observers, observability.NewTracer(ctx, tp))
	}
	a.observer = observers

	a.profiler = profiling.NewProfiler(cfg.Profiling, log.Named("profiling"))
	if err := a.profiler.Start(); err != nil {
		return err
	}

	log.Debug("configuration loaded",
		zap.String("separator", cfg.GroupBy.Separator),
		zap.Float64("categorical_threshold", cfg.Load.CategoricalThreshold),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled))
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.log == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if a.profiler != nil {
		usage, err := a.profiler.Stop()
		switch {
		case err != nil:
			a.log.Warn("failed to write profiles", zap.Error(err))
		case a.stats:
			a.log.Info("resource usage", usage.Fields()...)
		default:
			a.log.Debug("resource usage", usage.Fields()...)
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.log.Warn("failed to flush spans", zap.Error(err))
		}
	}
	if a.registry != nil {
		if err := writeMetrics(a.stderr, a.registry); err != nil {
			a.log.Warn("failed to write metrics", zap.Error(err))
		}
	}
	_ = logger.Sync()
	a.profiler, a.tracer, a.registry, a.log = nil, nil, nil, nil
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// splitList splits a comma separated flag value, dropping empty items
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
