// Package storage provides abstractions for persistent document storage.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when an operation targets a missing document.
var ErrNotFound = errors.New("document not found")

// EventType identifies the kind of change carried by a feed event.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event is one entry of a collection's change feed.
type Event struct {
	// Seq is the append-log sequence number, strictly increasing per
	// store connection.
	Seq uint64

	Type EventType

	// Path is the collection path the document belongs to.
	Path string

	// ID is the document id.
	ID string

	// Body is the document body after the change; nil for deletions.
	Body json.RawMessage

	// At is when the change was applied.
	At time.Time
}

// Document pairs a document id with its stored body.
type Document struct {
	ID   string
	Body json.RawMessage
}

// DocumentStore defines the contract a durable backend must satisfy to
// host replicated collections. Documents are keyed by (collection path,
// document id) with JSON bodies.
//
// This abstraction allows swapping backends (SQLite, in-memory, a
// hosted document store) without changing the engine. Required
// semantics:
//
//   - Every successful mutation is appended to a changelog and emitted
//     to all watchers of the affected path, at least once, preserving
//     per-document order.
//   - Delivery to one watcher never blocks writers or other watchers.
type DocumentStore interface {
	// Get retrieves one document body. Returns ErrNotFound if absent.
	Get(ctx context.Context, path, id string) (json.RawMessage, error)

	// Put stores body at (path, id), replacing any previous body in
	// full. Reports whether the document was newly created.
	Put(ctx context.Context, path, id string, body json.RawMessage) (created bool, err error)

	// Delete removes the document. Returns ErrNotFound if absent.
	Delete(ctx context.Context, path, id string) error

	// List returns every document under path, in unspecified order.
	List(ctx context.Context, path string) ([]Document, error)

	// Watch subscribes to the change feed of one collection path.
	// Events start after the point of registration. The returned cancel
	// func stops delivery and releases the watcher; the channel is
	// closed afterwards.
	Watch(path string) (<-chan Event, func())

	// Close releases any resources held by the store and closes all
	// watcher channels.
	Close() error
}
