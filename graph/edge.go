// Package graph provides the core graph execution engine for graphflow.
package graph

// Predicate is a pure function of a Context used to decide whether a
// conditional Edge should be traversed. Predicates must not block on I/O
// and must use the non-suspending Get/GetSync read path; the engine may
// call a predicate zero or more times per step, in edge-declaration
// order, and expects it to be deterministic over the Context snapshot
// visible at call time.
//
// Common patterns:
//   - Presence: value, ok := GetSync[string](c, "kind"); ok && value == "car"
//   - Threshold: score, _ := GetSync[float64](c, "score"); score > 0.8
type Predicate func(c *Context) bool

// Edge is a directed connector between two tasks, optionally guarded by
// a Predicate. A nil Condition makes the edge unconditional ("default").
type Edge struct {
	// From is the source task id.
	From string

	// To is the destination task id.
	To string

	// Condition is an optional predicate that determines whether this
	// edge should be traversed. If nil, the edge is unconditional and
	// always matches. If non-nil, it is only traversed when
	// Condition(context) returns true.
	Condition Predicate
}
