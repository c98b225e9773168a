package graph

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetrics_RecordStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.RecordStep("g1", "task-a", 25*time.Millisecond, StatusCompleted)

	count := testutil.ToFloat64(m.stepsTotal.WithLabelValues("g1", "task-a", "completed"))
	if count != 1 {
		t.Errorf("expected steps_total=1, got %v", count)
	}
}

func TestPrometheusMetrics_IncrementErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.IncrementErrors("g1", "task_not_found")
	m.IncrementErrors("g1", "task_not_found")

	count := testutil.ToFloat64(m.errorsTotal.WithLabelValues("g1", "task_not_found"))
	if count != 2 {
		t.Errorf("expected errors_total=2, got %v", count)
	}
}

func TestPrometheusMetrics_Gauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.SetSessionsWaiting(3)
	m.SetSessionsCompleted(7)

	if got := testutil.ToFloat64(m.sessionsWaiting); got != 3 {
		t.Errorf("expected sessions_waiting=3, got %v", got)
	}
	if got := testutil.ToFloat64(m.sessionsDone); got != 7 {
		t.Errorf("expected sessions_completed=7, got %v", got)
	}
}

func TestPrometheusMetrics_DisableSuppressesRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)
	m.Disable()

	m.RecordStep("g1", "task-a", time.Millisecond, StatusCompleted)
	m.IncrementErrors("g1", "kind")
	m.SetSessionsWaiting(5)

	if got := testutil.ToFloat64(m.stepsTotal.WithLabelValues("g1", "task-a", "completed")); got != 0 {
		t.Errorf("expected no recording while disabled, got %v", got)
	}
	if got := testutil.ToFloat64(m.sessionsWaiting); got != 0 {
		t.Errorf("expected gauge untouched while disabled, got %v", got)
	}
}

func TestPrometheusMetrics_EnableResumesRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)
	m.Disable()
	m.Enable()

	m.SetSessionsWaiting(2)
	if got := testutil.ToFloat64(m.sessionsWaiting); got != 2 {
		t.Errorf("expected recording resumed after Enable, got %v", got)
	}
}

func TestPrometheusMetrics_FreshRegistryConstructsWithoutPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("expected no panic constructing metrics against a fresh registry: %v", r)
		}
	}()
	// Use an explicit registry here too, since the package DefaultRegisterer
	// is process-global and shared across tests in this file.
	_ = NewPrometheusMetrics(prometheus.NewRegistry())
}
