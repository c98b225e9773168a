package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/flowstate/graphflow/graph/emit"
)

// Graph is an immutable-after-build registry of tasks and edges with an
// entry point. It resolves the next task to run from its edge set.
// Construction happens exclusively through GraphBuilder; once Build
// returns, a Graph's tasks, edges, and options never change for the
// lifetime of the value, so it is safe for unrestricted concurrent
// sharing.
type Graph struct {
	id          string
	tasks       map[string]Task
	edges       []Edge
	startTaskID string
	options     Options
}

// ID returns the graph's identifier.
func (g *Graph) ID() string { return g.id }

// GetTask returns the task registered under id, and whether it exists.
func (g *Graph) GetTask(id string) (Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// StartTaskID returns the configured entry-point task id, and whether
// one was set. It is set implicitly to the first task added unless
// overridden by GraphBuilder.SetStartTask.
func (g *Graph) StartTaskID() (string, bool) {
	if g.startTaskID == "" {
		return "", false
	}
	return g.startTaskID, true
}

// FindNextTask resolves the next task from currentID's outgoing edges,
// in declaration order: the first edge whose Condition is nil, or whose
// Condition(c) returns true, wins. An unconditional edge placed before a
// conditional edge for the same From shadows it. No match returns
// ("", false).
func (g *Graph) FindNextTask(currentID string, c *Context) (string, bool) {
	for _, e := range g.edges {
		if e.From != currentID {
			continue
		}
		if e.Condition == nil {
			return e.To, true
		}
		if e.Condition(c) {
			return e.To, true
		}
	}
	return "", false
}

// ExecuteStep runs exactly one step of session against g, interpreting
// the executed task's NextAction per §4.3 of the engine's control
// protocol. A ContinueAndExecute chain runs iteratively within this
// call, sharing session.Context's identity across every task in the
// chain, so writes by an earlier task in the chain are visible to every
// later one.
//
// On success, session.CurrentTaskID and session.StatusMessage reflect
// the final step of the chain. On failure, session is left with
// CurrentTaskID unchanged from the step that failed, so the caller may
// persist it and retry later.
func (g *Graph) ExecuteStep(ctx context.Context, session *Session) (ExecutionResult, error) {
	taskID := session.CurrentTaskID
	var lastResponse *string
	step := 0

	emitEvent := func(step int, taskID, msg string, meta map[string]interface{}) {
		g.options.Emitter.Emit(emit.Event{
			SessionID: session.ID,
			Step:      step,
			TaskID:    taskID,
			Msg:       msg,
			Meta:      meta,
		})
	}

	fail := func(kind string, err error) (ExecutionResult, error) {
		if g.options.Metrics != nil {
			g.options.Metrics.IncrementErrors(g.id, kind)
		}
		emitEvent(step, taskID, "error", map[string]interface{}{"error": err.Error(), "kind": kind})
		return ExecutionResult{}, err
	}

	for {
		step++
		task, ok := g.tasks[taskID]
		if !ok {
			return fail("task_not_found", &ErrTaskNotFound{TaskID: taskID})
		}

		emitEvent(step, taskID, "step_start", nil)

		runCtx, cancel := withTaskTimeout(ctx, g.options.DefaultTaskTimeout)
		start := time.Now()
		result, err := task.Run(runCtx, session.Context)
		latency := time.Since(start)
		cancel()

		if err != nil {
			return fail("task_execution_failed", &ErrTaskExecutionFailed{
				TaskID:  taskID,
				Message: "task run failed",
				Cause:   err,
			})
		}
		result.TaskID = taskID

		if result.StatusMessage != nil {
			session.StatusMessage = result.StatusMessage
		}
		if result.Response != nil {
			lastResponse = result.Response
		}

		recordStep := func(status Status) {
			if g.options.Metrics != nil {
				g.options.Metrics.RecordStep(g.id, taskID, latency, status)
			}
		}

		switch result.NextAction.kind {
		case actionEnd:
			session.CurrentTaskID = taskID
			recordStep(StatusCompleted)
			emitEvent(step, taskID, "step_end", map[string]interface{}{"duration_ms": latency.Milliseconds()})
			return ExecutionResult{Response: lastResponse, Status: StatusCompleted}, nil

		case actionWaitForInput, actionGoBack:
			session.CurrentTaskID = taskID
			recordStep(StatusWaitingForInput)
			emitEvent(step, taskID, "step_end", map[string]interface{}{"duration_ms": latency.Milliseconds()})
			return ExecutionResult{Response: lastResponse, Status: StatusWaitingForInput}, nil

		case actionGoTo:
			target := result.NextAction.target
			if _, ok := g.tasks[target]; !ok {
				return fail("task_not_found", &ErrTaskNotFound{TaskID: target})
			}
			session.CurrentTaskID = target
			recordStep(StatusWaitingForInput)
			emitEvent(step, taskID, "routing_decision", map[string]interface{}{"target": target})
			return ExecutionResult{Response: lastResponse, Status: StatusWaitingForInput}, nil

		case actionContinue:
			next, found := g.FindNextTask(taskID, session.Context)
			if found {
				session.CurrentTaskID = next
			} else {
				session.CurrentTaskID = taskID
			}
			recordStep(StatusWaitingForInput)
			emitEvent(step, taskID, "routing_decision", map[string]interface{}{"target": session.CurrentTaskID})
			return ExecutionResult{Response: lastResponse, Status: StatusWaitingForInput}, nil

		case actionContinueAndExecute:
			next, found := g.FindNextTask(taskID, session.Context)
			recordStep(StatusWaitingForInput)
			if !found {
				session.CurrentTaskID = taskID
				emitEvent(step, taskID, "step_end", map[string]interface{}{"duration_ms": latency.Milliseconds()})
				return ExecutionResult{Response: lastResponse, Status: StatusWaitingForInput}, nil
			}
			session.CurrentTaskID = next
			emitEvent(step, taskID, "routing_decision", map[string]interface{}{"target": next})
			taskID = next
			continue

		default:
			return fail("context_error", fmt.Errorf("graph: unknown next-action kind for task %q", taskID))
		}
	}
}

// GraphBuilder assembles a Graph's tasks and edges, then finalizes it
// into an immutable value via Build.
type GraphBuilder struct {
	g *Graph
}

// NewGraphBuilder starts building a Graph identified by id.
func NewGraphBuilder(id string) *GraphBuilder {
	return &GraphBuilder{
		g: &Graph{
			id:    id,
			tasks: make(map[string]Task),
		},
	}
}

// AddTask registers task. The first task added becomes the start task
// unless SetStartTask is called afterward.
func (b *GraphBuilder) AddTask(task Task) *GraphBuilder {
	isFirst := len(b.g.tasks) == 0
	b.g.tasks[task.ID()] = task
	if isFirst {
		b.g.startTaskID = task.ID()
	}
	return b
}

// AddEdge adds an unconditional edge from -> to.
func (b *GraphBuilder) AddEdge(from, to string) *GraphBuilder {
	b.g.edges = append(b.g.edges, Edge{From: from, To: to})
	return b
}

// AddConditionalEdge adds an edge from -> to guarded by condition.
func (b *GraphBuilder) AddConditionalEdge(from, to string, condition Predicate) *GraphBuilder {
	b.g.edges = append(b.g.edges, Edge{From: from, To: to, Condition: condition})
	return b
}

// SetStartTask overrides the start task id. It is a no-op if taskID was
// never added with AddTask.
func (b *GraphBuilder) SetStartTask(taskID string) *GraphBuilder {
	if _, ok := b.g.tasks[taskID]; ok {
		b.g.startTaskID = taskID
	}
	return b
}

// Build finalizes the Graph, applying opts, and returns it. The builder
// must not be reused afterward.
func (b *GraphBuilder) Build(opts ...Option) *Graph {
	b.g.options = applyOptions(opts...)
	return b.g
}
