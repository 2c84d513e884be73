package spring

import (
	"log/slog"
	"runtime"

	"github.com/KyleAnthonyShepherd/spring/qtpfs"
)

type options struct {
	workerCount      int
	pathCacheSize    int
	searchConfig     qtpfs.Config
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures PathManager constructor behavior.
type Option func(*options)

// WithWorkerCount configures how many workers execute a request batch.
// Each worker carries its own scratch state, so memory grows linearly with
// this value. Results never depend on it; the partitioning is deterministic.
//
// If workerCount <= 0, runtime.NumCPU() is used.
func WithWorkerCount(workerCount int) Option {
	return func(o *options) {
		o.workerCount = workerCount
	}
}

// WithPathCacheSize configures the capacity of the shared-path cache, in
// paths. A size <= 0 disables sharing across update batches; requests inside
// one batch still share.
func WithPathCacheSize(size int) Option {
	return func(o *options) {
		o.pathCacheSize = size
	}
}

// WithSearchConfig overrides the search tuning (mode, smoothing) used for
// every request. Defaults to qtpfs.DefaultConfig().
func WithSearchConfig(cfg qtpfs.Config) Option {
	return func(o *options) {
		o.searchConfig = cfg
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		workerCount:      runtime.NumCPU(),
		pathCacheSize:    1024,
		searchConfig:     qtpfs.DefaultConfig(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.workerCount <= 0 {
		o.workerCount = runtime.NumCPU()
	}
	return o
}
