package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and creates if needed) the journal at dbPath.
// ":memory:" yields a throwaway journal.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storeError("could not open run journal", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, storeError("failed to initialize run journal schema", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS run_events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		recorded_at INTEGER NOT NULL,
		payload BLOB NOT NULL,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_run_events_build_id ON run_events(build_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append writes event. A zero Timestamp is replaced with the current time.
func (s *SQLiteStore) Append(ctx context.Context, event Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Payload == nil {
		event.Payload = json.RawMessage("{}")
	}

	var metadataJSON []byte
	if event.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return event, marshalError(event.BuildID, event.Type, err)
		}
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO run_events (build_id, event_type, recorded_at, payload, metadata) VALUES (?, ?, ?, ?, ?)",
		event.BuildID, string(event.Type), event.Timestamp.UnixNano(), []byte(event.Payload), metadataJSON,
	)
	if err != nil {
		return event, storeError("failed to append event to run journal", err)
	}
	if event.Seq, err = res.LastInsertId(); err != nil {
		return event, storeError("failed to read event sequence", err)
	}
	return event, nil
}

// ByBuildID returns all events of one run in append order.
func (s *SQLiteStore) ByBuildID(ctx context.Context, buildID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT seq, build_id, event_type, recorded_at, payload, metadata FROM run_events WHERE build_id = ? ORDER BY seq",
		buildID,
	)
	if err != nil {
		return nil, storeError("failed to query run journal", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// RecentBuildIDs returns up to limit run ids ordered by their first event,
// newest first. A non-positive limit returns every run.
func (s *SQLiteStore) RecentBuildIDs(ctx context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT build_id FROM run_events GROUP BY build_id ORDER BY MIN(seq) DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("failed to query run journal", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeError("failed to scan run journal rows", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to iterate run journal rows", err)
	}
	return ids, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			e            Event
			eventType    string
			recordedAt   int64
			payload      []byte
			metadataJSON []byte
		)
		if err := rows.Scan(&e.Seq, &e.BuildID, &eventType, &recordedAt, &payload, &metadataJSON); err != nil {
			return nil, storeError("failed to scan run journal rows", err)
		}
		e.Type = EventType(eventType)
		e.Timestamp = time.Unix(0, recordedAt)
		e.Payload = json.RawMessage(payload)

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, unmarshalError(e, fmt.Errorf("metadata: %w", err))
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to iterate run journal rows", err)
	}
	return events, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
