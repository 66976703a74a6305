package samlsts

import (
	"github.com/yehevah/saml-sts/internal/adapters/driven/metrics"
	"github.com/yehevah/saml-sts/internal/core/ports"
)

// MetricsRecorder is the port interface for recording renewal metrics.
// Implementations are adapters (PrometheusMetricsRecorder for
// production, NoopMetricsRecorder for disabled/testing).
type MetricsRecorder = ports.MetricsRecorder

// Re-export the bundled recorder implementations.
type (
	PrometheusMetricsRecorder = metrics.PrometheusMetricsRecorder
	NoopMetricsRecorder       = metrics.NoopMetricsRecorder
)

var (
	NewPrometheusMetricsRecorder             = metrics.NewPrometheusMetricsRecorder
	NewPrometheusMetricsRecorderWithRegistry = metrics.NewPrometheusMetricsRecorderWithRegistry
	NewNoopMetricsRecorder                   = metrics.NewNoopMetricsRecorder
)
