package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsTestSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	_ = c.Write(&m)
	return m.GetCounter().GetValue()
}

func (ts *MetricsTestSuite) TestNewCollectorStartsAtZero() {
	c := NewCollector("schedtest")
	ts.Equal(float64(0), counterValue(c.Submitted))
	ts.Equal(float64(0), counterValue(c.Executed))
	ts.Equal(float64(0), counterValue(c.Stolen))
	ts.Equal(float64(0), counterValue(c.BarrierCompletions))
}

func (ts *MetricsTestSuite) TestCountersIncrement() {
	c := NewCollector("schedtest")
	c.Submitted.Inc()
	c.Submitted.Inc()
	c.Executed.Inc()

	ts.Equal(float64(2), counterValue(c.Submitted))
	ts.Equal(float64(1), counterValue(c.Executed))
}

func (ts *MetricsTestSuite) TestRegisterSucceedsOnFreshRegistry() {
	c := NewCollector("schedtest")
	reg := prometheus.NewRegistry()
	ts.NotPanics(func() { c.Register(reg) })

	mfs, err := reg.Gather()
	ts.NoError(err)
	ts.NotEmpty(mfs)
}

func (ts *MetricsTestSuite) TestQueueDepthGaugeVecTracksLabels() {
	c := NewCollector("schedtest")
	c.QueueDepth.WithLabelValues("0").Set(5)
	c.QueueDepth.WithLabelValues("1").Set(3)

	var m dto.Metric
	ts.NoError(c.QueueDepth.WithLabelValues("0").Write(&m))
	ts.Equal(float64(5), m.GetGauge().GetValue())
}
