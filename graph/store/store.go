// Package store provides persistence implementations for the graph
// package's SessionStorage and GraphStorage abstractions: an in-memory
// backing for development and tests, and a durable relational backing
// (SQLite or MySQL) for production use.
package store

import "errors"

// ErrNotFound reports a lookup miss. The SessionStorage/GraphStorage
// implementations in this package do not return it: their Get returns
// nil, nil for a missing id, matching the interface contract in
// graph.SessionStorage/graph.GraphStorage.
var ErrNotFound = errors.New("not found")
