package scheduler

import (
	"go.uber.org/zap"

	"github.com/go-foundations/scheduler/metrics"
)

// Option configures a Pool built via New.
type Option func(*configOptions)

type configOptions struct {
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Collector
}

// WithWorkers sets the fixed worker count. Panics if n <= 0.
func WithWorkers(n int) Option {
	return func(co *configOptions) {
		if n <= 0 {
			panic("scheduler: WithWorkers requires n > 0")
		}
		co.cfg.Workers = n
	}
}

// WithStartUnpaused builds the Pool with its pause flag cleared, so
// IsPaused reports false before any Resume. The flag does not gate
// execution: submitted tasks run as soon as a worker takes them whether
// or not this option is given.
func WithStartUnpaused() Option {
	return func(co *configOptions) { co.cfg.StartUnpaused = true }
}

// WithLogger attaches a zap logger for lifecycle and fault events. A
// Pool built without this option uses a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(co *configOptions) { co.logger = l }
}

// WithMetrics attaches a Prometheus-backed collector. A Pool built
// without this option performs no metrics bookkeeping.
func WithMetrics(c *metrics.Collector) Option {
	return func(co *configOptions) { co.metrics = c }
}
