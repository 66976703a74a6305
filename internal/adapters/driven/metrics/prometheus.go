package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yehevah/saml-sts/internal/core/ports"
)

// PrometheusMetricsRecorder records renewal metrics using Prometheus.
type PrometheusMetricsRecorder struct {
	renewalsTotal             *prometheus.CounterVec
	denialsTotal              *prometheus.CounterVec
	cacheCleanupFailuresTotal prometheus.Counter
}

// NewPrometheusMetricsRecorder creates a new Prometheus metrics
// recorder using the default Prometheus registry.
func NewPrometheusMetricsRecorder() *PrometheusMetricsRecorder {
	return NewPrometheusMetricsRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsRecorderWithRegistry creates a new Prometheus
// metrics recorder with a custom registry. Use this for testing.
func NewPrometheusMetricsRecorderWithRegistry(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	renewalsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sts_renew_renewals_total",
		Help: "Total token renewal attempts",
	}, []string{"version", "result"})

	denialsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sts_renew_denials_total",
		Help: "Total renewal denials by rule",
	}, []string{"rule"})

	cacheCleanupFailuresTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sts_renew_cache_cleanup_failures_total",
		Help: "Total failed removals of superseded cache entries",
	})

	reg.MustRegister(
		renewalsTotal,
		denialsTotal,
		cacheCleanupFailuresTotal,
	)

	return &PrometheusMetricsRecorder{
		renewalsTotal:             renewalsTotal,
		denialsTotal:              denialsTotal,
		cacheCleanupFailuresTotal: cacheCleanupFailuresTotal,
	}
}

// RecordRenewal records a completed renewal attempt.
func (p *PrometheusMetricsRecorder) RecordRenewal(version string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	p.renewalsTotal.WithLabelValues(version, result).Inc()
}

// RecordDenial records an eligibility denial.
func (p *PrometheusMetricsRecorder) RecordDenial(rule string) {
	p.denialsTotal.WithLabelValues(rule).Inc()
}

// RecordCacheCleanupFailure records a failed stale-key removal.
func (p *PrometheusMetricsRecorder) RecordCacheCleanupFailure() {
	p.cacheCleanupFailuresTotal.Inc()
}

// Ensure PrometheusMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*PrometheusMetricsRecorder)(nil)
