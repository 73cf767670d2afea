// Package memstore provides an in-memory implementation of the
// storage.DocumentStore contract. It backs tests and embedded use;
// nothing survives a restart.
package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/alex-morrisonn/trolly/internal/storage"
)

// Ensure Store implements storage.DocumentStore
var _ storage.DocumentStore = (*Store)(nil)

// Store keeps documents in nested maps keyed by path then id.
type Store struct {
	mu     sync.Mutex
	docs   map[string]map[string]json.RawMessage
	seq    uint64
	closed bool

	feed *storage.Feed
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		docs: make(map[string]map[string]json.RawMessage),
		feed: storage.NewFeed(),
	}
}

// Close rejects further use and stops all watchers.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.feed.Close()
	return nil
}

// Get retrieves one document body.
func (s *Store) Get(ctx context.Context, path, id string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}
	body, ok := s.docs[path][id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(body), nil
}

// Put stores body, replacing any previous document in full.
func (s *Store) Put(ctx context.Context, path, id string, body json.RawMessage) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return false, err
	}
	coll, ok := s.docs[path]
	if !ok {
		coll = make(map[string]json.RawMessage)
		s.docs[path] = coll
	}
	_, existed := coll[id]
	coll[id] = clone(body)

	typ := storage.EventUpdated
	if !existed {
		typ = storage.EventCreated
	}
	s.publish(typ, path, id, body)
	return !existed, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, path, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	coll := s.docs[path]
	if _, ok := coll[id]; !ok {
		return storage.ErrNotFound
	}
	delete(coll, id)
	s.publish(storage.EventDeleted, path, id, nil)
	return nil
}

// List returns every document under path.
func (s *Store) List(ctx context.Context, path string) ([]storage.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}
	coll := s.docs[path]
	docs := make([]storage.Document, 0, len(coll))
	for id, body := range coll {
		docs = append(docs, storage.Document{ID: id, Body: clone(body)})
	}
	return docs, nil
}

// Watch subscribes to the change feed of one collection path.
func (s *Store) Watch(path string) (<-chan storage.Event, func()) {
	return s.feed.Watch(path)
}

// publish is called with s.mu held so events carry sequence numbers in
// apply order.
func (s *Store) publish(typ storage.EventType, path, id string, body json.RawMessage) {
	s.seq++
	s.feed.Publish(storage.Event{
		Seq:  s.seq,
		Type: typ,
		Path: path,
		ID:   id,
		Body: clone(body),
		At:   time.Now(),
	})
}

func (s *Store) usable() error {
	if s.closed {
		return errors.New("memstore: store is closed")
	}
	return nil
}

func clone(b json.RawMessage) json.RawMessage {
	if b == nil {
		return nil
	}
	return append(json.RawMessage(nil), b...)
}
