// Package graph provides the core graph execution engine for graphflow.
package graph

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics provides Prometheus-compatible metrics collection for
// single-step graph execution, narrowed from a concurrent multi-node
// scheduler's metric set down to what applies to one task per step:
//
//  1. steps_total (counter): Completed Task.Run calls inside ExecuteStep
//     (one per task, so a ContinueAndExecute chain counts each task).
//     Labels: graph_id, task_id, status (completed/waiting_for_input/error).
//  2. step_latency_ms (histogram): Task.Run duration in milliseconds.
//     Labels: graph_id, task_id.
//     Buckets: [1, 5, 10, 50, 100, 500, 1000, 5000, 10000].
//  3. errors_total (counter): Task-execution and storage failures.
//     Labels: graph_id, kind (task_not_found/task_execution_failed/storage_error/context_error).
//  4. sessions_waiting (gauge): Sessions currently parked at WaitingForInput.
//  5. sessions_completed (gauge): Sessions that have reached Completed.
//
// All metrics are namespaced "graphflow". Thread-safe: all methods use
// atomic operations or mutex protection.
type PrometheusMetrics struct {
	stepsTotal      *prometheus.CounterVec
	stepLatency     *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	sessionsWaiting prometheus.Gauge
	sessionsDone    prometheus.Gauge

	registry prometheus.Registerer
	mu       sync.RWMutex
	enabled  bool
}

// NewPrometheusMetrics creates and registers the graph execution metrics
// with registry. A nil registry falls back to prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	pm := &PrometheusMetrics{
		registry: registry,
		enabled:  true,
	}

	pm.stepsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphflow",
		Name:      "steps_total",
		Help:      "Completed Task.Run calls within ExecuteStep, labeled by outcome status",
	}, []string{"graph_id", "task_id", "status"})

	pm.stepLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "graphflow",
		Name:      "step_latency_ms",
		Help:      "Task.Run duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
	}, []string{"graph_id", "task_id"})

	pm.errorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphflow",
		Name:      "errors_total",
		Help:      "Execution and storage errors, labeled by error kind",
	}, []string{"graph_id", "kind"})

	pm.sessionsWaiting = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "graphflow",
		Name:      "sessions_waiting",
		Help:      "Number of sessions currently parked at WaitingForInput",
	})

	pm.sessionsDone = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "graphflow",
		Name:      "sessions_completed",
		Help:      "Number of sessions that have reached Completed",
	})

	return pm
}

// RecordStep records one task run within ExecuteStep: its latency and resulting status.
func (pm *PrometheusMetrics) RecordStep(graphID, taskID string, latency time.Duration, status Status) {
	if !pm.isEnabled() {
		return
	}
	pm.stepLatency.WithLabelValues(graphID, taskID).Observe(float64(latency.Milliseconds()))
	pm.stepsTotal.WithLabelValues(graphID, taskID, status.String()).Inc()
}

// IncrementErrors increments the error counter for graphID by kind (e.g.
// "task_not_found", "task_execution_failed", "storage_error", "context_error").
func (pm *PrometheusMetrics) IncrementErrors(graphID, kind string) {
	if !pm.isEnabled() {
		return
	}
	pm.errorsTotal.WithLabelValues(graphID, kind).Inc()
}

// SetSessionsWaiting sets the current count of sessions parked at WaitingForInput.
func (pm *PrometheusMetrics) SetSessionsWaiting(count int) {
	if !pm.isEnabled() {
		return
	}
	pm.sessionsWaiting.Set(float64(count))
}

// SetSessionsCompleted sets the current count of sessions that have reached Completed.
func (pm *PrometheusMetrics) SetSessionsCompleted(count int) {
	if !pm.isEnabled() {
		return
	}
	pm.sessionsDone.Set(float64(count))
}

// isEnabled reads the enabled flag under the read lock.
func (pm *PrometheusMetrics) isEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}

// Disable temporarily disables metric recording (useful for testing).
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable re-enables metric recording after Disable().
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}
