package graph

import (
	"context"
	"encoding/json"
)

// Task is a polymorphic unit of work. Implementations own no mutable
// per-session state; a Task value is shared, potentially across many
// concurrently executing Sessions, and must be safe for concurrent Run
// invocations.
type Task interface {
	// ID returns this task's stable identifier, unique within a Graph.
	ID() string

	// Run executes the task against the given Context and produces a
	// TaskResult. Run may perform arbitrary I/O and may fail; the engine
	// treats it as a single suspendable unit and never mutates the Task
	// between calls.
	Run(ctx context.Context, c *Context) (TaskResult, error)
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc struct {
	TaskID string
	Fn     func(ctx context.Context, c *Context) (TaskResult, error)
}

// ID implements Task.
func (f TaskFunc) ID() string { return f.TaskID }

// Run implements Task.
func (f TaskFunc) Run(ctx context.Context, c *Context) (TaskResult, error) {
	return f.Fn(ctx, c)
}

// TaskResult is the outcome of one Task.Run call.
type TaskResult struct {
	// Response is surfaced to the caller of ExecuteStep/FlowRunner.Run.
	Response *string

	// NextAction tells the engine how to transition after this result.
	NextAction NextAction

	// TaskID is stamped by the engine with the id of the task that
	// produced this result; tasks must leave it empty.
	TaskID string

	// StatusMessage is an optional human-readable progress string,
	// copied onto the Session after this step.
	StatusMessage *string
}

// actionKind enumerates the NextAction variants. It is unexported: the
// only way to construct a NextAction is through the constructors below,
// so no other value is ever valid.
type actionKind int

const (
	actionContinue actionKind = iota
	actionContinueAndExecute
	actionGoTo
	actionGoBack
	actionEnd
	actionWaitForInput
)

// NextAction is a tagged variant describing how the engine should
// transition after a Task.Run call. The zero value is not valid; always
// construct one with Continue, ContinueAndExecute, GoTo, GoBack, End, or
// WaitForInput.
type NextAction struct {
	kind   actionKind
	target string // only meaningful when kind == actionGoTo
}

// Continue advances to the resolved next task but does not execute it;
// control returns to the host.
func Continue() NextAction { return NextAction{kind: actionContinue} }

// ContinueAndExecute resolves the next task and executes it immediately
// in the same call, against the same Context.
func ContinueAndExecute() NextAction { return NextAction{kind: actionContinueAndExecute} }

// GoTo jumps to an explicitly named task, bypassing the edge set.
func GoTo(taskID string) NextAction { return NextAction{kind: actionGoTo, target: taskID} }

// GoBack is reserved: the engine treats it as WaitForInput.
func GoBack() NextAction { return NextAction{kind: actionGoBack} }

// End marks the workflow complete; no further transition occurs.
func End() NextAction { return NextAction{kind: actionEnd} }

// WaitForInput keeps the session at the current task; the workflow
// expects external input before the next step.
func WaitForInput() NextAction { return NextAction{kind: actionWaitForInput} }

// jsonAction is the wire representation of a NextAction.
type jsonAction struct {
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
}

var actionNames = map[actionKind]string{
	actionContinue:           "continue",
	actionContinueAndExecute: "continue_and_execute",
	actionGoTo:               "go_to",
	actionGoBack:             "go_back",
	actionEnd:                "end",
	actionWaitForInput:       "wait_for_input",
}

var actionByName = func() map[string]actionKind {
	m := make(map[string]actionKind, len(actionNames))
	for k, v := range actionNames {
		m[v] = k
	}
	return m
}()

// MarshalJSON implements json.Marshaler for NextAction.
func (n NextAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonAction{Kind: actionNames[n.kind], Target: n.target})
}

// UnmarshalJSON implements json.Unmarshaler for NextAction.
func (n *NextAction) UnmarshalJSON(b []byte) error {
	var wire jsonAction
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	n.kind = actionByName[wire.Kind]
	n.target = wire.Target
	return nil
}

// Kind exposes the variant name ("continue", "continue_and_execute",
// "go_to", "go_back", "end", "wait_for_input") for logging/events.
func (n NextAction) Kind() string { return actionNames[n.kind] }

// Target returns the explicit task id for a GoTo action, and "" otherwise.
func (n NextAction) Target() string { return n.target }
