package graph

import (
	"encoding/json"
	"testing"
)

func TestStatus_String(t *testing.T) {
	cases := map[Status]string{
		StatusWaitingForInput: "waiting_for_input",
		StatusCompleted:       "completed",
		StatusError:           "error",
		Status(99):            "unknown",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("status %d: expected %q, got %q", status, want, got)
		}
	}
}

func TestNewSessionFromTask(t *testing.T) {
	s := NewSessionFromTask("sess-1", "graph-1", "start-task")

	if s.ID != "sess-1" || s.GraphID != "graph-1" || s.CurrentTaskID != "start-task" {
		t.Errorf("unexpected session fields: %+v", s)
	}
	if s.Context == nil {
		t.Fatal("expected a freshly allocated Context")
	}
}

func TestSession_JSONRoundTrip(t *testing.T) {
	s := NewSessionFromTask("sess-1", "graph-1", "task-a")
	msg := "waiting on user"
	s.StatusMessage = &msg
	_ = s.Context.Set("visits", 3)
	s.Context.AddUserMessage("hi")

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored Session
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if restored.ID != s.ID || restored.GraphID != s.GraphID || restored.CurrentTaskID != s.CurrentTaskID {
		t.Errorf("field mismatch after round trip: %+v vs %+v", restored, s)
	}
	if restored.StatusMessage == nil || *restored.StatusMessage != msg {
		t.Errorf("expected status message preserved, got %v", restored.StatusMessage)
	}
	visits, ok := Get[int](restored.Context, "visits")
	if !ok || visits != 3 {
		t.Errorf("expected visits=3 preserved, got %d (ok=%v)", visits, ok)
	}
	if restored.Context.ChatHistoryLen() != 1 {
		t.Errorf("expected 1 chat message preserved, got %d", restored.Context.ChatHistoryLen())
	}
}

func TestSession_Clone_DeepCopiesContext(t *testing.T) {
	s := NewSessionFromTask("sess-1", "graph-1", "task-a")
	_ = s.Context.Set("counter", 1)

	clone := s.Clone()
	_ = clone.Context.Set("counter", 2)

	original, _ := Get[int](s.Context, "counter")
	cloned, _ := Get[int](clone.Context, "counter")
	if original != 1 {
		t.Errorf("expected original untouched by clone mutation, got %d", original)
	}
	if cloned != 2 {
		t.Errorf("expected clone's own mutation visible, got %d", cloned)
	}
}

func TestSession_Clone_CopiesStatusMessagePointer(t *testing.T) {
	s := NewSessionFromTask("sess-1", "graph-1", "task-a")
	msg := "original"
	s.StatusMessage = &msg

	clone := s.Clone()
	*clone.StatusMessage = "mutated"

	if *s.StatusMessage != "original" {
		t.Errorf("expected clone's StatusMessage to be independently allocated, original changed to %q", *s.StatusMessage)
	}
}

func TestSession_Clone_NilStatusMessage(t *testing.T) {
	s := NewSessionFromTask("sess-1", "graph-1", "task-a")
	clone := s.Clone()
	if clone.StatusMessage != nil {
		t.Error("expected nil StatusMessage to remain nil after clone")
	}
}
