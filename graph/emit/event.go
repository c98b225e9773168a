package emit

// Event represents an observability event emitted during graph execution.
//
// Events provide detailed insight into session behavior:
//   - Step start/end
//   - Routing decisions
//   - Errors and warnings
//
// Events are emitted to an Emitter which can:
//   - Log to stdout/stderr
//   - Send to OpenTelemetry
//   - Store in time-series databases
//   - Trigger alerts
type Event struct {
	// SessionID identifies the session that emitted this event.
	SessionID string

	// Step is the 1-indexed position of the task within one ExecuteStep
	// call (a ContinueAndExecute chain counts 1, 2, ...); it restarts at 1
	// on every call.
	Step int

	// TaskID identifies which task emitted this event.
	// Empty string for session-level events.
	TaskID string

	// Msg is a human-readable description of the event.
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "duration_ms": Execution duration in milliseconds
	//   - "error": Error details
	//   - "tokens": Token count for LLM calls
	//   - "retryable": Whether an error can be retried
	Meta map[string]interface{}
}
