package gate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricNamespace = "bcrbot_gate"

type metricCollector struct {
	waitDuration prometheus.Histogram
}

var metrics = &metricCollector{
	waitDuration: promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      "wait_duration_seconds",
			Help:      "duration until all runs of the awaited workflow finished",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	),
}

func (m *metricCollector) WaitDurationObserve(d time.Duration) {
	m.waitDuration.Observe(d.Seconds())
}
