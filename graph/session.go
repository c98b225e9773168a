package graph

import "encoding/json"

// Status is the outcome category of a completed ExecuteStep call.
type Status int

const (
	// StatusWaitingForInput means the session stopped at a task and
	// expects external input before the next step.
	StatusWaitingForInput Status = iota
	// StatusCompleted means the chain ended with an End action.
	StatusCompleted
	// StatusError means the engine or storage failed in a way that did
	// not itself raise an error to the caller.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusWaitingForInput:
		return "waiting_for_input"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ExecutionResult is the engine's reply from one ExecuteStep call. It is
// not persisted; only the Session is.
type ExecutionResult struct {
	Response *string
	Status   Status
	Err      string
}

// Session is the persistent execution state bound to a Graph: a current
// task pointer, a status message, and the shared Context. CurrentTaskID
// always names a task present in the bound Graph, except transiently
// inside a step.
type Session struct {
	ID            string
	GraphID       string
	CurrentTaskID string
	StatusMessage *string
	Context       *Context
}

// NewSessionFromTask creates a Session bound to graphID, positioned at
// firstTaskID, with a freshly allocated Context.
func NewSessionFromTask(id, graphID, firstTaskID string) *Session {
	return &Session{
		ID:            id,
		GraphID:       graphID,
		CurrentTaskID: firstTaskID,
		Context:       NewContext(),
	}
}

// sessionWire is the JSON-on-the-wire shape of a Session, used by
// graph/store for durable persistence.
type sessionWire struct {
	ID            string   `json:"id"`
	GraphID       string   `json:"graph_id"`
	CurrentTaskID string   `json:"current_task_id"`
	StatusMessage *string  `json:"status_message,omitempty"`
	Context       *Context `json:"context"`
}

// MarshalJSON serializes the Session, including its Context, so a round
// trip through UnmarshalJSON reproduces the exact resumable state.
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionWire{
		ID:            s.ID,
		GraphID:       s.GraphID,
		CurrentTaskID: s.CurrentTaskID,
		StatusMessage: s.StatusMessage,
		Context:       s.Context,
	})
}

// UnmarshalJSON restores a Session previously produced by MarshalJSON.
func (s *Session) UnmarshalJSON(b []byte) error {
	wire := sessionWire{Context: NewContext()}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	s.ID = wire.ID
	s.GraphID = wire.GraphID
	s.CurrentTaskID = wire.CurrentTaskID
	s.StatusMessage = wire.StatusMessage
	s.Context = wire.Context
	return nil
}

// Clone returns a deep copy of the Session: its Context's data map and
// chat history are copied, never aliased, so a storage Get never hands
// out a Session another caller can mutate through.
func (s *Session) Clone() *Session {
	out := &Session{
		ID:            s.ID,
		GraphID:       s.GraphID,
		CurrentTaskID: s.CurrentTaskID,
		Context:       NewContext(),
	}
	if s.StatusMessage != nil {
		msg := *s.StatusMessage
		out.StatusMessage = &msg
	}
	raw, err := s.Context.MarshalJSON()
	if err != nil {
		return out
	}
	_ = out.Context.UnmarshalJSON(raw)
	return out
}
