package scheduler

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/suite"

	"github.com/go-foundations/scheduler/internal/envelope"
	"github.com/go-foundations/scheduler/metrics"
)

// MetricsIntegrationTestSuite exercises the Collector wired into a real
// Pool, as opposed to metrics/metrics_test.go's isolated instrument
// checks — it asserts that each instrument is actually driven by the
// production code paths (submission, dispatch, stealing, barriers).
type MetricsIntegrationTestSuite struct {
	suite.Suite
}

func TestMetricsIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(MetricsIntegrationTestSuite))
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	_ = c.Write(&m)
	return m.GetCounter().GetValue()
}

func counterVecValue(c *prometheus.CounterVec, labelValues ...string) float64 {
	var m dto.Metric
	_ = c.WithLabelValues(labelValues...).Write(&m)
	return m.GetCounter().GetValue()
}

func gaugeVecValue(g *prometheus.GaugeVec, labelValues ...string) float64 {
	var m dto.Metric
	_ = g.WithLabelValues(labelValues...).Write(&m)
	return m.GetGauge().GetValue()
}

func (ts *MetricsIntegrationTestSuite) TestSubmittedAndExecutedIncrementThroughSubmit() {
	collector := metrics.NewCollector("schedtest_submit")
	pool := New(WithWorkers(2), WithStartUnpaused(), WithMetrics(collector))
	defer pool.Close()

	fut, err := Submit[int](pool, func() (int, error) { return 1, nil })
	ts.NoError(err)
	_, err = fut.Get()
	ts.NoError(err)

	ts.Equal(float64(1), counterValue(collector.Submitted))
	ts.Equal(float64(1), counterValue(collector.Executed))
}

func (ts *MetricsIntegrationTestSuite) TestStolenAndStolenFromIncrementOnRealSteal() {
	collector := metrics.NewCollector("schedtest_steal")
	// Two workers; everything is queued directly onto worker 0's own
	// deque so worker 1 has no local work and must steal from worker
	// 0's back end to do anything. Worker 0 first takes its own task,
	// which blocks until release; only then are the two other tasks
	// queued behind it, giving worker 1 a window to steal one of them
	// (the deque's "≤1 stays with owner" guard leaves the other behind
	// for worker 0).
	pool := New(WithWorkers(2), WithStartUnpaused(), WithMetrics(collector))
	defer pool.Close()

	release := make(chan struct{})
	started := make(chan struct{}, 1)

	_, ownTask := WrapTask[struct{}](pool, func() (struct{}, error) {
		started <- struct{}{}
		<-release
		return struct{}{}, nil
	})
	_, stealableA := WrapTask[struct{}](pool, func() (struct{}, error) { return struct{}{}, nil })
	_, stealableB := WrapTask[struct{}](pool, func() (struct{}, error) { return struct{}{}, nil })

	pool.workers[0].dq.PushFront(ownTask)

	<-started

	pool.workers[0].dq.PushFront(stealableB)
	pool.workers[0].dq.PushFront(stealableA)

	ts.Eventually(func() bool {
		return counterValue(collector.Stolen) >= 1
	}, time.Second, time.Millisecond)

	ts.GreaterOrEqual(counterVecValue(collector.StolenFrom, "0"), float64(1))

	close(release)
}

func (ts *MetricsIntegrationTestSuite) TestBarrierCompletionsIncrementsOnGroupFinish() {
	collector := metrics.NewCollector("schedtest_barrier")
	pool := New(WithWorkers(4), WithStartUnpaused(), WithMetrics(collector))
	defer pool.Close()

	const members = 10
	envs := make([]*envelope.Envelope, members)
	for i := range envs {
		_, env := WrapTask[struct{}](pool, func() (struct{}, error) { return struct{}{}, nil })
		envs[i] = env
	}

	fut, err := AddGroupWithBarrierFunc[int](pool, envs, func() (int, error) { return 1, nil })
	ts.NoError(err)
	_, err = fut.Get()
	ts.NoError(err)

	ts.Equal(float64(1), counterValue(collector.BarrierCompletions))
}

func (ts *MetricsIntegrationTestSuite) TestQueueDepthReflectsSubmittedBacklog() {
	collector := metrics.NewCollector("schedtest_depth")
	// A single worker, so the first submitted task is picked up and
	// blocked on release immediately, leaving the rest queued behind it
	// — the gauge should settle at n-1 and fall back to 0 once released.
	pool := New(WithWorkers(1), WithStartUnpaused(), WithMetrics(collector))
	defer pool.Close()

	const n = 5
	release := make(chan struct{})
	for i := 0; i < n; i++ {
		_, err := Submit[struct{}](pool, func() (struct{}, error) {
			<-release
			return struct{}{}, nil
		})
		ts.NoError(err)
	}

	ts.Eventually(func() bool {
		return gaugeVecValue(collector.QueueDepth, "0") == float64(n-1)
	}, time.Second, time.Millisecond)

	close(release)

	ts.Eventually(func() bool {
		return gaugeVecValue(collector.QueueDepth, "0") == 0
	}, time.Second, time.Millisecond)
}
