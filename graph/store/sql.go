package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/flowstate/graphflow/graph"
)

// dialect captures the handful of SQL differences between the sqlite
// and mysql backings: placeholder style and upsert syntax.
type dialect struct {
	name         string
	placeholders func(n int) []string
	upsertSuffix string // appended after VALUES(...) to implement UPSERT-by-id
}

func questionMarks(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "?"
	}
	return out
}

var sqliteDialect = dialect{
	name:         "sqlite",
	placeholders: questionMarks,
	upsertSuffix: `ON CONFLICT(id) DO UPDATE SET
		graph_id = excluded.graph_id,
		current_task_id = excluded.current_task_id,
		status_message = excluded.status_message,
		context_json = excluded.context_json,
		updated_at = excluded.updated_at`,
}

var mysqlDialect = dialect{
	name:         "mysql",
	placeholders: questionMarks,
	upsertSuffix: `ON DUPLICATE KEY UPDATE
		graph_id = VALUES(graph_id),
		current_task_id = VALUES(current_task_id),
		status_message = VALUES(status_message),
		context_json = VALUES(context_json),
		updated_at = VALUES(updated_at)`,
}

// SQLSessionStorage is a graph.SessionStorage backed by database/sql,
// parametrized over a dialect so the same query logic serves both
// SQLite and MySQL. It persists the single `sessions` table spec.md §6
// specifies: context_json round-trips through
// graph.Context.MarshalJSON/UnmarshalJSON, so a session is fully
// self-contained and loads without any other state.
type SQLSessionStorage struct {
	db *sql.DB
	d  dialect
}

// NewSQLiteSessionStorage opens (creating if necessary) a SQLite
// database at path and returns a durable SessionStorage backed by it.
// WAL mode is enabled for concurrent readers; SQLite permits only one
// writer, so the connection pool is capped at one open connection.
func NewSQLiteSessionStorage(path string) (*SQLSessionStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set %q: %w", pragma, err)
		}
	}

	s := &SQLSessionStorage{db: db, d: sqliteDialect}
	if err := s.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewMySQLSessionStorage opens a connection pool against dsn and
// returns a durable SessionStorage backed by it, creating the sessions
// table if it does not already exist.
func NewMySQLSessionStorage(dsn string) (*SQLSessionStorage, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	s := &SQLSessionStorage{db: db, d: mysqlDialect}
	if err := s.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLSessionStorage) createTable(ctx context.Context) error {
	var ddl string
	switch s.d.name {
	case "sqlite":
		ddl = `CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			graph_id TEXT NOT NULL,
			current_task_id TEXT NOT NULL,
			status_message TEXT,
			context_json TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`
	case "mysql":
		ddl = `CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(255) PRIMARY KEY,
			graph_id VARCHAR(255) NOT NULL,
			current_task_id VARCHAR(255) NOT NULL,
			status_message TEXT,
			context_json JSON NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLSessionStorage) Close() error { return s.db.Close() }

// Save upserts session by id.
func (s *SQLSessionStorage) Save(ctx context.Context, session *graph.Session) error {
	raw, err := session.Context.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	var statusMessage any
	if session.StatusMessage != nil {
		statusMessage = *session.StatusMessage
	}

	query := fmt.Sprintf(`
		INSERT INTO sessions (id, graph_id, current_task_id, status_message, context_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		%s
	`, s.d.upsertSuffix)

	_, err = s.db.ExecContext(ctx, query,
		session.ID, session.GraphID, session.CurrentTaskID, statusMessage, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get loads the session identified by id, or returns (nil, nil) if absent.
func (s *SQLSessionStorage) Get(ctx context.Context, id string) (*graph.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT graph_id, current_task_id, status_message, context_json
		FROM sessions WHERE id = ?
	`, id)

	var graphID, currentTaskID, contextJSON string
	var statusMessage sql.NullString
	if err := row.Scan(&graphID, &currentTaskID, &statusMessage, &contextJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session := &graph.Session{
		ID:            id,
		GraphID:       graphID,
		CurrentTaskID: currentTaskID,
		Context:       graph.NewContext(),
	}
	if statusMessage.Valid {
		msg := statusMessage.String
		session.StatusMessage = &msg
	}
	if err := json.Unmarshal([]byte(contextJSON), session.Context); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context: %w", err)
	}
	return session, nil
}

// Delete removes the session identified by id, if present.
func (s *SQLSessionStorage) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
