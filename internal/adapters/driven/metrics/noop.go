package metrics

import (
	"github.com/yehevah/saml-sts/internal/core/ports"
)

// NoopMetricsRecorder is a no-op implementation for when metrics are
// disabled. All methods are safe to call and do nothing.
type NoopMetricsRecorder struct{}

// NewNoopMetricsRecorder creates a new no-op metrics recorder.
func NewNoopMetricsRecorder() *NoopMetricsRecorder {
	return &NoopMetricsRecorder{}
}

// RecordRenewal is a no-op.
func (n *NoopMetricsRecorder) RecordRenewal(version string, success bool) {}

// RecordDenial is a no-op.
func (n *NoopMetricsRecorder) RecordDenial(rule string) {}

// RecordCacheCleanupFailure is a no-op.
func (n *NoopMetricsRecorder) RecordCacheCleanupFailure() {}

// Ensure NoopMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*NoopMetricsRecorder)(nil)
