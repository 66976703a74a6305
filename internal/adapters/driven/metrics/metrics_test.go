//go:build unit

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yehevah/saml-sts/internal/core/ports"
)

// TestNoopMetricsRecorder_AllMethods verifies all methods don't panic.
func TestNoopMetricsRecorder_AllMethods(t *testing.T) {
	var recorder ports.MetricsRecorder = NewNoopMetricsRecorder()

	// None of these should panic
	recorder.RecordRenewal("saml2.0", true)
	recorder.RecordRenewal("saml1.1", false)
	recorder.RecordDenial("audience")
	recorder.RecordCacheCleanupFailure()
}

// counterValue finds a counter sample by name and label values.
func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := true
			for _, pair := range metric.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && pair.GetValue() != want {
					matched = false
					break
				}
			}
			if matched {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

// TestPrometheusMetricsRecorder_RecordRenewal verifies renewal counts
// by version and result.
func TestPrometheusMetricsRecorder_RecordRenewal(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := NewPrometheusMetricsRecorderWithRegistry(registry)

	recorder.RecordRenewal("saml2.0", true)
	recorder.RecordRenewal("saml2.0", true)
	recorder.RecordRenewal("saml2.0", false)
	recorder.RecordRenewal("saml1.1", true)

	successes := counterValue(t, registry, "sts_renew_renewals_total",
		map[string]string{"version": "saml2.0", "result": "success"})
	if successes != 2 {
		t.Errorf("saml2.0 successes = %v, want 2", successes)
	}
	failures := counterValue(t, registry, "sts_renew_renewals_total",
		map[string]string{"version": "saml2.0", "result": "failure"})
	if failures != 1 {
		t.Errorf("saml2.0 failures = %v, want 1", failures)
	}
}

// TestPrometheusMetricsRecorder_RecordDenial verifies denial counts by
// rule.
func TestPrometheusMetricsRecorder_RecordDenial(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := NewPrometheusMetricsRecorderWithRegistry(registry)

	recorder.RecordDenial("audience")
	recorder.RecordDenial("audience")
	recorder.RecordDenial("grace_exceeded")

	if got := counterValue(t, registry, "sts_renew_denials_total", map[string]string{"rule": "audience"}); got != 2 {
		t.Errorf("audience denials = %v, want 2", got)
	}
	if got := counterValue(t, registry, "sts_renew_denials_total", map[string]string{"rule": "grace_exceeded"}); got != 1 {
		t.Errorf("grace denials = %v, want 1", got)
	}
}

// TestPrometheusMetricsRecorder_RecordCacheCleanupFailure verifies the
// cleanup failure counter.
func TestPrometheusMetricsRecorder_RecordCacheCleanupFailure(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := NewPrometheusMetricsRecorderWithRegistry(registry)

	recorder.RecordCacheCleanupFailure()
	recorder.RecordCacheCleanupFailure()

	if got := counterValue(t, registry, "sts_renew_cache_cleanup_failures_total", nil); got != 2 {
		t.Errorf("cleanup failures = %v, want 2", got)
	}
}
