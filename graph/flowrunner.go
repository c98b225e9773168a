package graph

import "context"

// FlowRunner composes a Graph and a SessionStorage into a single
// load -> step -> save operation. It takes no locks of its own;
// concurrent FlowRunner.Run calls against the same session id race on
// the persisted Session, and the last Save wins.
type FlowRunner struct {
	graph   *Graph
	storage SessionStorage
}

// NewFlowRunner binds graph and storage into a FlowRunner.
func NewFlowRunner(g *Graph, storage SessionStorage) *FlowRunner {
	return &FlowRunner{graph: g, storage: storage}
}

// Run loads sessionID, executes exactly one step (or ContinueAndExecute
// chain) against it, persists the result, and returns the
// ExecutionResult. If storage reports no such session, it returns
// ErrSessionNotFound; if the load itself fails, it returns
// ErrStorageError wrapping the cause. In both cases storage is not
// touched again. If ExecuteStep
// fails, the session is not saved, leaving the prior persisted state
// intact.
func (r *FlowRunner) Run(ctx context.Context, sessionID string) (ExecutionResult, error) {
	session, err := r.storage.Get(ctx, sessionID)
	if err != nil {
		return ExecutionResult{}, &ErrStorageError{Message: "failed to load session", Cause: err}
	}
	if session == nil {
		return ExecutionResult{}, &ErrSessionNotFound{SessionID: sessionID}
	}

	result, err := r.graph.ExecuteStep(ctx, session)
	if err != nil {
		return ExecutionResult{}, err
	}

	if err := r.storage.Save(ctx, session); err != nil {
		return ExecutionResult{}, &ErrStorageError{Message: "failed to save session", Cause: err}
	}

	return result, nil
}
