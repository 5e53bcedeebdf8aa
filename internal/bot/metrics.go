package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
)

const metricNamespace = "bcrbot"

const (
	processedEventsMetricName = "processed_events_total"
	reviewRunsMetricName      = "review_runs_total"
)

const (
	eventTypeLabel = "event_type"
	resultLabel    = "result"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultIgnored = "ignored"
)

type metricCollector struct {
	logger          *zap.Logger
	processedEvents *prometheus.CounterVec
	reviewRuns      *prometheus.CounterVec
}

var metrics = &metricCollector{
	logger: zap.L().Named(loggerName).Named("metrics"),
	processedEvents: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      processedEventsMetricName,
			Help:      "count of processed github webhook events",
		},
		[]string{eventTypeLabel, resultLabel},
	),
	reviewRuns: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      reviewRunsMetricName,
			Help:      "count of reviews of all open pull requests",
		},
		[]string{resultLabel},
	),
}

func (m *metricCollector) logGetMetricFailed(metricName string, err error) {
	m.logger.Warn(
		"could not record metric",
		zap.String("metric", metricName),
		logfields.Event("recording_metric_failed"),
		zap.Error(err),
	)
}

func (m *metricCollector) ProcessedEventsInc(eventType, result string) {
	cnt, err := m.processedEvents.GetMetricWith(prometheus.Labels{
		eventTypeLabel: eventType,
		resultLabel:    result,
	})
	if err != nil {
		m.logGetMetricFailed(processedEventsMetricName, err)
		return
	}

	cnt.Inc()
}

func (m *metricCollector) ReviewRunsInc(result string) {
	cnt, err := m.reviewRuns.GetMetricWith(prometheus.Labels{resultLabel: result})
	if err != nil {
		m.logGetMetricFailed(reviewRunsMetricName, err)
		return
	}

	cnt.Inc()
}
