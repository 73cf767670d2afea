// Package sqlite provides a SQLite-backed implementation of the
// storage.DocumentStore contract.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/alex-morrisonn/trolly/internal/storage"
)

// Ensure Store implements storage.DocumentStore
var _ storage.DocumentStore = (*Store)(nil)

// Store implements storage.DocumentStore using SQLite. Mutations are
// serialized so changelog sequence order matches feed publish order.
type Store struct {
	db   *sql.DB
	feed *storage.Feed

	// held across commit and publish of each mutation
	writeMu sync.Mutex
}

// New creates a new Store with the given database path. It creates the
// parent directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, feed: storage.NewFeed()}, nil
}

// Close stops all watchers and closes the database connection.
func (s *Store) Close() error {
	s.feed.Close()
	return s.db.Close()
}

// Get retrieves one document body.
func (s *Store) Get(ctx context.Context, path, id string) (json.RawMessage, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE path = ? AND id = ?",
		path, id,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return body, nil
}

// Put stores body at (path, id), replacing any previous body in full.
func (s *Store) Put(ctx context.Context, path, id string, body json.RawMessage) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE path = ? AND id = ?",
		path, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check document: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (path, id, body, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		path, id, string(body), now.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert document: %w", err)
	}

	typ := storage.EventUpdated
	if exists == 0 {
		typ = storage.EventCreated
	}

	seq, err := s.appendChange(ctx, tx, typ, path, id, body, now)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.feed.Publish(storage.Event{Seq: seq, Type: typ, Path: path, ID: id, Body: body, At: now})
	return exists == 0, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, path, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM documents WHERE path = ? AND id = ?",
		path, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	seq, err := s.appendChange(ctx, tx, storage.EventDeleted, path, id, nil, now)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.feed.Publish(storage.Event{Seq: seq, Type: storage.EventDeleted, Path: path, ID: id, At: now})
	return nil
}

// List returns every document under path.
func (s *Store) List(ctx context.Context, path string) ([]storage.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, body FROM documents WHERE path = ?",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []storage.Document
	for rows.Next() {
		var doc storage.Document
		var body []byte
		if err := rows.Scan(&doc.ID, &body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Body = body
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// Watch subscribes to the change feed of one collection path.
func (s *Store) Watch(path string) (<-chan storage.Event, func()) {
	return s.feed.Watch(path)
}

func (s *Store) appendChange(ctx context.Context, tx *sql.Tx, typ storage.EventType, path, id string, body json.RawMessage, at time.Time) (uint64, error) {
	var bodyText any
	if body != nil {
		bodyText = string(body)
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO changelog (path, doc_id, action, body, at) VALUES (?, ?, ?, ?, ?)",
		path, id, string(typ), bodyText, at.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append changelog: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read changelog seq: %w", err)
	}
	return uint64(seq), nil
}
