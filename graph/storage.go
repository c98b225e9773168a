package graph

import "context"

// SessionStorage is an abstract CRUD contract for sessions. Get returns
// a deep copy so a Session handed to one caller can never be mutated
// through another's reference; implementations must be safe for
// concurrent use across every handler that shares them. Concrete
// implementations (in-memory, SQL-backed) live in graph/store.
type SessionStorage interface {
	// Save persists session, overwriting any prior value with the same id.
	Save(ctx context.Context, session *Session) error

	// Get loads the session identified by id. It returns (nil, nil), not
	// an error, when no such session exists.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes the session identified by id, if present. Deleting
	// an absent id is not an error.
	Delete(ctx context.Context, id string) error
}

// GraphStorage is an abstract CRUD contract for graphs. Unlike sessions,
// graphs have no durable backing: graph code is source, not data, so
// only an in-memory implementation exists, primarily useful for tests
// and for hosts that register more than one named graph.
type GraphStorage interface {
	Save(ctx context.Context, id string, g *Graph) error
	Get(ctx context.Context, id string) (*Graph, error)
	Delete(ctx context.Context, id string) error
}
