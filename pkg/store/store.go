// Package store persists recordings in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/offlinefirst/mimic/pkg/events"
	_ "modernc.org/sqlite" // CGO-free SQLite driver
)

// ErrNotFound is returned when a recording id does not exist.
var ErrNotFound = errors.New("recording not found")

// Recording describes one stored session.
type Recording struct {
	ID         string
	Name       string
	CreatedAt  time.Time
	EventCount int
}

// Options controls how the store is opened.
type Options struct {
	// Path is the SQLite database file.
	Path string

	Clock func() time.Time
}

// Store wraps the recordings database.
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

// Open creates or opens the database at the configured path and ensures the
// schema exists.
func Open(opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("database path must not be empty")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	// WAL plus a busy timeout avoids "database is locked" under
	// concurrent access.
	db, err := sql.Open("sqlite", opts.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, clock: clock}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS recordings(
	  id          TEXT    PRIMARY KEY,
	  name        TEXT    NOT NULL,
	  created_at  TEXT    NOT NULL,
	  event_count INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS recording_events(
	  recording_id TEXT    NOT NULL,
	  seq          INTEGER NOT NULL,
	  device       TEXT    NOT NULL,
	  action       TEXT    NOT NULL,
	  occurred_at  TEXT    NOT NULL,
	  payload      TEXT    NOT NULL CHECK (json_valid(payload)),
	  PRIMARY KEY (recording_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_recording_events_time ON recording_events(recording_id, occurred_at);
	`)
	if err != nil {
		return fmt.Errorf("create database tables: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a recording under a fresh id and returns its metadata. The
// whole event list is written in one transaction.
func (s *Store) Save(ctx context.Context, name string, evts events.Events) (Recording, error) {
	rec := Recording{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		CreatedAt:  s.clock().UTC(),
		EventCount: len(evts),
	}
	if rec.Name == "" {
		rec.Name = "recording-" + rec.CreatedAt.Format("20060102-150405")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Recording{}, fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recordings(id, name, created_at, event_count) VALUES(?,?,?,?)`,
		rec.ID, rec.Name, rec.CreatedAt.Format(time.RFC3339Nano), rec.EventCount,
	); err != nil {
		_ = tx.Rollback()
		return Recording{}, fmt.Errorf("insert recording: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO recording_events(recording_id, seq, device, action, occurred_at, payload) VALUES(?,?,?,?,?,json(?))`)
	if err != nil {
		_ = tx.Rollback()
		return Recording{}, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for seq, evt := range evts {
		payload, err := events.MarshalEvent(evt)
		if err != nil {
			_ = tx.Rollback()
			return Recording{}, fmt.Errorf("marshal event %d: %w", seq, err)
		}
		device, action := events.Describe(evt)
		occurred := evt.When().UTC().Format(time.RFC3339Nano)
		if _, err := stmt.ExecContext(ctx, rec.ID, seq, device, action, occurred, string(payload)); err != nil {
			_ = tx.Rollback()
			return Recording{}, fmt.Errorf("insert event %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Recording{}, fmt.Errorf("commit transaction: %w", err)
	}
	return rec, nil
}

// Load returns a recording's metadata and its events in capture order.
func (s *Store) Load(ctx context.Context, id string) (Recording, events.Events, error) {
	rec, err := s.get(ctx, id)
	if err != nil {
		return Recording{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM recording_events WHERE recording_id = ? ORDER BY seq`, id)
	if err != nil {
		return Recording{}, nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	evts := make(events.Events, 0, rec.EventCount)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return Recording{}, nil, fmt.Errorf("scan event: %w", err)
		}
		evt, err := events.UnmarshalEvent(payload)
		if err != nil {
			return Recording{}, nil, fmt.Errorf("decode event %d: %w", len(evts), err)
		}
		evts = append(evts, evt)
	}
	if err := rows.Err(); err != nil {
		return Recording{}, nil, fmt.Errorf("iterate events: %w", err)
	}
	return rec, evts, nil
}

// List returns all recordings, newest first.
func (s *Store) List(ctx context.Context) ([]Recording, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, event_count FROM recordings ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer rows.Close()

	var recs []Recording
	for rows.Next() {
		rec, err := scanRecording(rows.Scan)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recordings: %w", err)
	}
	return recs, nil
}

// Delete removes a recording and its events.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recording_events WHERE recording_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete events: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete recording: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("count deleted rows: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("delete recording %q: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

func (s *Store) get(ctx context.Context, id string) (Recording, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, event_count FROM recordings WHERE id = ?`, id)
	rec, err := scanRecording(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Recording{}, fmt.Errorf("load recording %q: %w", id, ErrNotFound)
	}
	return rec, err
}

func scanRecording(scan func(...any) error) (Recording, error) {
	var rec Recording
	var createdAt string
	if err := scan(&rec.ID, &rec.Name, &createdAt, &rec.EventCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Recording{}, err
		}
		return Recording{}, fmt.Errorf("scan recording: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Recording{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = parsed
	return rec, nil
}
