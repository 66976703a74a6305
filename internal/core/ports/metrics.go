package ports

// MetricsRecorder is the port interface for recording renewal metrics.
// Implementations are adapters (PrometheusMetricsRecorder for
// production, NoopMetricsRecorder for disabled/testing).
type MetricsRecorder interface {
	// RecordRenewal records a completed renewal attempt for a schema
	// variant.
	RecordRenewal(version string, success bool)

	// RecordDenial records an eligibility denial by the rule that
	// fired.
	RecordDenial(rule string)

	// RecordCacheCleanupFailure records a failed stale-key removal.
	RecordCacheCleanupFailure()
}
