// Package graph provides the core graph execution engine for graphflow.
package graph

import (
	"time"

	"github.com/flowstate/graphflow/graph/emit"
)

// Options configures a Graph's ambient concerns: per-task timeout,
// metrics, cost tracking, and event emission. The zero value means no
// timeout, no metrics and a nil Emitter; GraphBuilder.Build replaces a
// nil Emitter with a NullEmitter.
type Options struct {
	// DefaultTaskTimeout bounds each Task.Run call when the caller's
	// context carries no deadline of its own. Zero means unbounded.
	DefaultTaskTimeout time.Duration

	// Metrics, if non-nil, receives step/error counters and latency
	// observations for every ExecuteStep call.
	Metrics *PrometheusMetrics

	// CostTracker, if non-nil, is available to Task implementations that
	// call LLMs via graph/model; the engine itself never writes to it.
	CostTracker *CostTracker

	// Emitter receives step_start/step_end/routing_decision/error events.
	// Defaults to emit.NewNullEmitter() when unset.
	Emitter emit.Emitter
}

// Option is a functional option for configuring a Graph at build time.
type Option func(*Options)

// WithDefaultTaskTimeout sets the per-task timeout applied when a
// Task.Run call's context carries no deadline of its own.
func WithDefaultTaskTimeout(d time.Duration) Option {
	return func(o *Options) { o.DefaultTaskTimeout = d }
}

// WithMetrics attaches a PrometheusMetrics collector.
func WithMetrics(metrics *PrometheusMetrics) Option {
	return func(o *Options) { o.Metrics = metrics }
}

// WithCostTracker attaches a CostTracker for task implementations to record
// LLM token usage into.
func WithCostTracker(tracker *CostTracker) Option {
	return func(o *Options) { o.CostTracker = tracker }
}

// WithEmitter attaches an event Emitter.
func WithEmitter(emitter emit.Emitter) Option {
	return func(o *Options) { o.Emitter = emitter }
}

// applyOptions folds opts into a fully-populated Options, defaulting an
// unset Emitter to a NullEmitter.
func applyOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Emitter == nil {
		o.Emitter = emit.NewNullEmitter()
	}
	return o
}
