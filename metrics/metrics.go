// Package metrics provides an optional Prometheus-backed collector for
// the scheduler's pool. Wiring it in is entirely opt-in: a Pool built
// without a Collector performs no metrics work at all.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds the instruments the scheduler updates during
// submission, dispatch, stealing, and barrier completion.
type Collector struct {
	Submitted          prometheus.Counter
	Executed           prometheus.Counter
	Stolen             prometheus.Counter
	StolenFrom         *prometheus.CounterVec
	BarrierCompletions prometheus.Counter
	QueueDepth         *prometheus.GaugeVec
}

// NewCollector builds a Collector whose metric names are prefixed with
// namespace (e.g. "scheduler"). The returned Collector is not
// registered with any registry; call Register to do that.
func NewCollector(namespace string) *Collector {
	return &Collector{
		Submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Total number of envelopes submitted to the pool.",
		}),
		Executed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_executed_total",
			Help:      "Total number of envelopes that finished executing.",
		}),
		Stolen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_stolen_total",
			Help:      "Total number of envelopes a worker took from a peer's deque.",
		}),
		StolenFrom: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_stolen_from_total",
			Help:      "Total number of envelopes taken from a given worker's deque by a thief.",
		}, []string{"victim"}),
		BarrierCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "barrier_completions_total",
			Help:      "Total number of barrier groups whose completion task has run.",
		}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_queue_depth",
			Help:      "Snapshot occupancy of a worker's deque.",
		}, []string{"worker"}),
	}
}

// Register registers every instrument with reg.
func (c *Collector) Register(reg prometheus.Registerer) {
	reg.MustRegister(c.Submitted, c.Executed, c.Stolen, c.StolenFrom, c.BarrierCompletions, c.QueueDepth)
}
