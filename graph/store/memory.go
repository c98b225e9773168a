package store

import (
	"context"
	"sync"

	"github.com/flowstate/graphflow/graph"
)

// MemorySessionStorage is an in-memory, mutex-guarded implementation of
// graph.SessionStorage, grounded on the original Rust InMemorySessionStorage
// (a concurrent map of full-value clones). Designed for development,
// tests, and single-process deployments where durability is not
// required; data is lost when the process terminates.
type MemorySessionStorage struct {
	mu       sync.RWMutex
	sessions map[string]*graph.Session
}

// NewMemorySessionStorage creates an empty MemorySessionStorage.
func NewMemorySessionStorage() *MemorySessionStorage {
	return &MemorySessionStorage{sessions: make(map[string]*graph.Session)}
}

// Save stores a deep copy of session, overwriting any prior value.
func (m *MemorySessionStorage) Save(ctx context.Context, session *graph.Session) error {
	clone := session.Clone()
	m.mu.Lock()
	m.sessions[session.ID] = clone
	m.mu.Unlock()
	return nil
}

// Get returns a deep copy of the stored session, or (nil, nil) if absent.
func (m *MemorySessionStorage) Get(ctx context.Context, id string) (*graph.Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return session.Clone(), nil
}

// Delete removes the session identified by id, if present.
func (m *MemorySessionStorage) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// MemoryGraphStorage is an in-memory implementation of graph.GraphStorage,
// grounded on the original Rust InMemoryGraphStorage. Graphs carry no
// durable backing: graph code is source, not data, so this is the only
// GraphStorage implementation in the package, useful for hosts that
// register more than one named graph and for tests.
type MemoryGraphStorage struct {
	mu     sync.RWMutex
	graphs map[string]*graph.Graph
}

// NewMemoryGraphStorage creates an empty MemoryGraphStorage.
func NewMemoryGraphStorage() *MemoryGraphStorage {
	return &MemoryGraphStorage{graphs: make(map[string]*graph.Graph)}
}

// Save registers g under id, overwriting any prior value.
func (m *MemoryGraphStorage) Save(ctx context.Context, id string, g *graph.Graph) error {
	m.mu.Lock()
	m.graphs[id] = g
	m.mu.Unlock()
	return nil
}

// Get returns the graph registered under id, or (nil, nil) if absent.
// Graphs are immutable after Build, so no copy is made.
func (m *MemoryGraphStorage) Get(ctx context.Context, id string) (*graph.Graph, error) {
	m.mu.RLock()
	g, ok := m.graphs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return g, nil
}

// Delete removes the graph registered under id, if present.
func (m *MemoryGraphStorage) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.graphs, id)
	m.mu.Unlock()
	return nil
}
