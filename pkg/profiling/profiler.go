// Package profiling captures pprof profiles and process resource usage for
// one tabula run
package profiling

import (
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Config names the profile files to write; empty paths are skipped
type Config struct {
	CPUProfile string `yaml:"cpu_profile" json:"cpu_profile"`
	MemProfile string `yaml:"mem_profile" json:"mem_profile"`
}

// Enabled reports whether any profile is requested
func (c Config) Enabled() bool {
	return c.CPUProfile != "" || c.MemProfile != ""
}

// Profiler records a CPU profile between Start and Stop and a heap profile
// at Stop
type Profiler struct {
	config  Config
	logger  *zap.Logger
	monitor *ResourceMonitor
	cpuFile *os.File
}

// NewProfiler creates a profiler. The resource monitor starts immediately.
func NewProfiler(config Config, logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		config:  config,
		logger:  logger,
		monitor: NewResourceMonitor(),
	}
}

// Start begins CPU profiling when configured
func (p *Profiler) Start() error {
	if p.config.CPUProfile == "" {
		return nil
	}
	file, err := os.Create(p.config.CPUProfile)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create CPU profile file").
			WithDetail("path", p.config.CPUProfile)
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		_ = file.Close()
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to start CPU profiling")
	}
	p.cpuFile = file
	return nil
}

// Stop ends CPU profiling, writes the heap profile and returns the resource
// usage since NewProfiler
func (p *Profiler) Stop() (*ResourceUsage, error) {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		err := p.cpuFile.Close()
		p.cpuFile = nil
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to close CPU profile")
		}
		p.logger.Info("CPU profile saved", zap.String("file", p.config.CPUProfile))
	}

	if p.config.MemProfile != "" {
		if err := p.saveMemoryProfile(); err != nil {
			return nil, err
		}
	}
	return p.monitor.Usage(), nil
}

func (p *Profiler) saveMemoryProfile() error {
	file, err := os.Create(p.config.MemProfile)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create memory profile file").
			WithDetail("path", p.config.MemProfile)
	}
	defer file.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(file); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write memory profile")
	}
	p.logger.Info("memory profile saved", zap.String("file", p.config.MemProfile))
	return nil
}

// ResourceMonitor measures the current process. Fields the platform cannot
// report stay zero.
type ResourceMonitor struct {
	process      *process.Process
	startCPUTime float64
	startTime    time.Time
}

// NewResourceMonitor snapshots the process CPU time
func NewResourceMonitor() *ResourceMonitor {
	rm := &ResourceMonitor{startTime: time.Now()}
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		return rm
	}
	rm.process = proc
	if times, err := proc.Times(); err == nil {
		rm.startCPUTime = times.Total()
	}
	return rm
}

// ResourceUsage contains resource usage information
type ResourceUsage struct {
	Elapsed        time.Duration
	CPUPercent     float64
	MemoryRSS      uint64
	HeapAlloc      uint64
	GoroutineCount int
	ThreadCount    int32
}

// Usage returns resource usage since the monitor was created
func (rm *ResourceMonitor) Usage() *ResourceUsage {
	usage := &ResourceUsage{
		Elapsed:        time.Since(rm.startTime),
		GoroutineCount: runtime.NumGoroutine(),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	usage.HeapAlloc = mem.HeapAlloc

	if rm.process == nil {
		return usage
	}
	if times, err := rm.process.Times(); err == nil && usage.Elapsed > 0 {
		usage.CPUPercent = (times.Total() - rm.startCPUTime) / usage.Elapsed.Seconds() * 100
	}
	if info, err := rm.process.MemoryInfo(); err == nil {
		usage.MemoryRSS = info.RSS
	}
	usage.ThreadCount, _ = rm.process.NumThreads()
	return usage
}

// Fields renders the usage as zap fields
func (u *ResourceUsage) Fields() []zap.Field {
	return []zap.Field{
		zap.Duration("elapsed", u.Elapsed),
		zap.Float64("cpu_percent", u.CPUPercent),
		zap.Uint64("rss_bytes", u.MemoryRSS),
		zap.Uint64("heap_alloc_bytes", u.HeapAlloc),
		zap.Int("goroutines", u.GoroutineCount),
		zap.Int32("threads", u.ThreadCount),
	}
}
