// Package graph provides the core graph execution engine for graphflow.
package graph

import (
	"encoding/json"
	"sync"
	"time"
)

// Message role constants, with the same values as graph/model's. Message
// is a separate type from model.Message, so a Task passing
// Context.GetAllMessages() to a model.ChatModel converts field by field.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultMaxHistory is the chat history bound used when a Context is
// constructed via NewContext without an explicit override.
const DefaultMaxHistory = 1000

// Message is a single chat-history entry.
//
// Timestamp is stamped in UTC at append time and is monotonic
// non-decreasing within a single Context: messages are appended while
// holding the history lock, so two messages appended back-to-back never
// observe a timestamp that goes backwards.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Context is the per-session shared store passed to every Task.Run call.
//
// It holds two independent pieces of state:
//   - data: an arbitrary typed key/value store (JSON-shaped values)
//   - chatHistory: a bounded, timestamped, ordered list of Messages
//
// Both are safe for concurrent access. Context is logically owned by its
// Session: it is created with the Session, persisted with it, and
// destroyed with it. There is no transactional get-then-set; callers
// needing that must serialize themselves (e.g. from inside one Task).
type Context struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage

	histMu     sync.RWMutex
	chatHist   []Message
	maxHistory int
}

// NewContext creates an empty Context with the default chat-history bound.
func NewContext() *Context {
	return NewContextWithHistoryBound(DefaultMaxHistory)
}

// NewContextWithHistoryBound creates an empty Context whose chat history
// never grows past maxHistory entries. A non-positive bound is treated
// as DefaultMaxHistory.
func NewContextWithHistoryBound(maxHistory int) *Context {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Context{
		data:       make(map[string]json.RawMessage),
		maxHistory: maxHistory,
	}
}

// Set inserts or overwrites key with value. The last write wins.
func (c *Context) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return &ContextError{Message: "failed to encode value for key " + key, Cause: err}
	}
	c.mu.Lock()
	c.data[key] = raw
	c.mu.Unlock()
	return nil
}

// SetSync is the non-suspending variant of Set used from edge predicates.
// It shares the same underlying store as Set.
func (c *Context) SetSync(key string, value any) error {
	return c.Set(key, value)
}

// Get performs a typed read of key. If the key is absent, or its stored
// value cannot be decoded into T, Get returns the zero value and false —
// this is treated as "absent", never as an error.
func Get[T any](c *Context, key string) (T, bool) {
	var zero T
	c.mu.RLock()
	raw, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, false
	}
	return out, true
}

// GetSync is the non-suspending variant of Get used from edge predicates.
func GetSync[T any](c *Context, key string) (T, bool) {
	return Get[T](c, key)
}

// Remove deletes key, if present.
func (c *Context) Remove(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// Clear removes every key from the data store. Chat history is untouched;
// use ClearChatHistory separately.
func (c *Context) Clear() {
	c.mu.Lock()
	c.data = make(map[string]json.RawMessage)
	c.mu.Unlock()
}

// AddUserMessage appends a user-role chat message, evicting the oldest
// message first if the history is already at its bound.
func (c *Context) AddUserMessage(content string) {
	c.addMessage(RoleUser, content)
}

// AddAssistantMessage appends an assistant-role chat message.
func (c *Context) AddAssistantMessage(content string) {
	c.addMessage(RoleAssistant, content)
}

// AddSystemMessage appends a system-role chat message.
func (c *Context) AddSystemMessage(content string) {
	c.addMessage(RoleSystem, content)
}

func (c *Context) addMessage(role, content string) {
	c.histMu.Lock()
	defer c.histMu.Unlock()
	c.chatHist = append(c.chatHist, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if over := len(c.chatHist) - c.maxHistory; over > 0 {
		c.chatHist = c.chatHist[over:]
	}
}

// GetLastMessages returns up to the last n messages, oldest first. If
// n <= 0 or exceeds the history length, the entire history is returned.
func (c *Context) GetLastMessages(n int) []Message {
	c.histMu.RLock()
	defer c.histMu.RUnlock()
	if n <= 0 || n >= len(c.chatHist) {
		out := make([]Message, len(c.chatHist))
		copy(out, c.chatHist)
		return out
	}
	start := len(c.chatHist) - n
	out := make([]Message, n)
	copy(out, c.chatHist[start:])
	return out
}

// GetAllMessages returns the full chat history, oldest first.
func (c *Context) GetAllMessages() []Message {
	return c.GetLastMessages(-1)
}

// ChatHistoryLen returns the current number of stored messages.
func (c *Context) ChatHistoryLen() int {
	c.histMu.RLock()
	defer c.histMu.RUnlock()
	return len(c.chatHist)
}

// ClearChatHistory removes all stored messages.
func (c *Context) ClearChatHistory() {
	c.histMu.Lock()
	c.chatHist = nil
	c.histMu.Unlock()
}

// contextWire is the JSON-on-the-wire shape of a Context, used by
// MarshalJSON/UnmarshalJSON and by graph/store for durable persistence.
type contextWire struct {
	Data       map[string]json.RawMessage `json:"data"`
	ChatHist   []Message                  `json:"chat_history"`
	MaxHistory int                        `json:"max_history"`
}

// MarshalJSON serializes both data and chat history (with its configured
// bound), so a round trip through UnmarshalJSON preserves everything
// spec.md Testable Property 3 requires.
func (c *Context) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	data := make(map[string]json.RawMessage, len(c.data))
	for k, v := range c.data {
		data[k] = v
	}
	c.mu.RUnlock()

	c.histMu.RLock()
	hist := make([]Message, len(c.chatHist))
	copy(hist, c.chatHist)
	maxHistory := c.maxHistory
	c.histMu.RUnlock()

	return json.Marshal(contextWire{Data: data, ChatHist: hist, MaxHistory: maxHistory})
}

// UnmarshalJSON restores a Context previously produced by MarshalJSON.
func (c *Context) UnmarshalJSON(b []byte) error {
	var wire contextWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	if wire.Data == nil {
		wire.Data = make(map[string]json.RawMessage)
	}
	maxHistory := wire.MaxHistory
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	c.mu.Lock()
	c.data = wire.Data
	c.mu.Unlock()

	c.histMu.Lock()
	c.chatHist = wire.ChatHist
	c.maxHistory = maxHistory
	c.histMu.Unlock()
	return nil
}
