package review

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
)

const metricNamespace = "bcrbot_review"

const (
	outcomesMetricName    = "outcomes_total"
	sideEffectsMetricName = "side_effects_total"
)

const (
	outcomeLabel = "outcome"
	actionLabel  = "action"
)

type metricCollector struct {
	logger      *zap.Logger
	outcomes    *prometheus.CounterVec
	sideEffects *prometheus.CounterVec
}

var metrics = newMetricCollector()

func newMetricCollector() *metricCollector {
	return &metricCollector{
		logger: zap.L().Named(loggerName).Named("metrics"),
		outcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      outcomesMetricName,
				Help:      "count of pull request reconciliations by outcome",
			},
			[]string{outcomeLabel},
		),
		sideEffects: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      sideEffectsMetricName,
				Help:      "count of changes done on github",
			},
			[]string{actionLabel},
		),
	}
}

func (m *metricCollector) logGetMetricFailed(metricName string, err error) {
	m.logger.Warn(
		"could not record metric",
		zap.String("metric", metricName),
		logfields.Event("recording_metric_failed"),
		zap.Error(err),
	)
}

func (m *metricCollector) OutcomeInc(outcome Outcome) {
	cnt, err := m.outcomes.GetMetricWith(prometheus.Labels{outcomeLabel: string(outcome)})
	if err != nil {
		m.logGetMetricFailed(outcomesMetricName, err)
		return
	}

	cnt.Inc()
}

func (m *metricCollector) SideEffectInc(kind ActionKind) {
	cnt, err := m.sideEffects.GetMetricWith(prometheus.Labels{actionLabel: string(kind)})
	if err != nil {
		m.logGetMetricFailed(sideEffectsMetricName, err)
		return
	}

	cnt.Inc()
}
