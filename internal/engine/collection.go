// Package engine implements the synchronization core: replicated
// document collections with ordered change notification.
//
// A Collection is a server-authoritative set of JSON documents of one
// type at one collection path. Writes apply in submission order per
// document id; writes to the same id from different callers race and
// resolve last-writer-wins at whole-document granularity. There are no
// locks or transactions across documents.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/alex-morrisonn/trolly/internal/metrics"
	"github.com/alex-morrisonn/trolly/internal/storage"
)

// Option configures a Collection.
type Option[T any] func(*Collection[T])

// WithValidate installs the type-specific invariant check run before
// every Add and Update. A non-nil return aborts the write.
func WithValidate[T any](fn func(*T) error) Option[T] {
	return func(c *Collection[T]) { c.validate = fn }
}

// WithIdentify installs the hook that injects the document id into a
// decoded value. Ids live outside document bodies.
func WithIdentify[T any](fn func(*T, string)) Option[T] {
	return func(c *Collection[T]) { c.identify = fn }
}

// Collection is a replicated collection of documents of type T.
type Collection[T any] struct {
	store storage.DocumentStore
	hub   *Hub
	path  string

	validate func(*T) error
	identify func(*T, string)

	// per-document apply sequencer
	locks sync.Map // doc id -> *sync.Mutex
}

// NewCollection returns a collection bound to one path of the hub's
// document store.
func NewCollection[T any](hub *Hub, path string, opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{store: hub.store, hub: hub, path: path}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the collection path.
func (c *Collection[T]) Path() string { return c.path }

// Add validates doc, assigns a fresh id and stores it. Watchers observe
// the resulting created event.
func (c *Collection[T]) Add(ctx context.Context, doc T) (string, error) {
	if err := c.check(&doc); err != nil {
		return "", err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", &ValidationError{Detail: "encode document", Err: err}
	}
	id := uuid.New().String()
	if _, err := c.store.Put(ctx, c.path, id, body); err != nil {
		return "", fmt.Errorf("failed to store document: %w", err)
	}
	metrics.CollectionOps.WithLabelValues(c.path, "add").Inc()
	return id, nil
}

// Update replaces the document at id in full. The later of two racing
// updates wins; no field-level merge is attempted. Returns ErrNotFound
// if the document is absent.
func (c *Collection[T]) Update(ctx context.Context, id string, doc T) error {
	if err := c.check(&doc); err != nil {
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return &ValidationError{Detail: "encode document", Err: err}
	}

	unlock := c.lockDoc(id)
	defer unlock()

	if _, err := c.store.Get(ctx, c.path, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to read document: %w", err)
	}
	if _, err := c.store.Put(ctx, c.path, id, body); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	metrics.CollectionOps.WithLabelValues(c.path, "update").Inc()
	return nil
}

// Remove deletes the document entirely; there is no tombstone. Returns
// ErrNotFound if the document is absent.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	unlock := c.lockDoc(id)
	defer unlock()

	if err := c.store.Delete(ctx, c.path, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	metrics.CollectionOps.WithLabelValues(c.path, "remove").Inc()
	return nil
}

// Get retrieves and decodes one document.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	body, err := c.store.Get(ctx, c.path, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return doc, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return doc, fmt.Errorf("failed to read document: %w", err)
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return doc, &ValidationError{Detail: fmt.Sprintf("decode document %s", id), Err: err}
	}
	if c.identify != nil {
		c.identify(&doc, id)
	}
	return doc, nil
}

// Snapshot materializes the current matching set, ordered by less.
// A stored document that fails to decode surfaces as ValidationError
// rather than silently vanishing from the result.
func (c *Collection[T]) Snapshot(ctx context.Context, filter func(T) bool, less func(T, T) bool) ([]T, error) {
	snap, _, err := c.materialize(ctx, filter, less)
	return snap, err
}

// Subscribe registers a standing query. The current matching set is
// delivered to onSnapshot before Subscribe returns; afterwards every
// change to the collection re-evaluates the query and, when the ordered
// result differs from the last delivered one, the full new snapshot is
// delivered. Evaluation failures go to onError (which may be nil).
//
// Delivery runs on the subscription's own goroutine: a slow consumer
// stalls neither writers nor other subscribers. Within one
// subscription, snapshots arrive in event order; intermediate states
// may be coalesced away.
func (c *Collection[T]) Subscribe(filter func(T) bool, less func(T, T) bool, onSnapshot func([]T), onError func(error)) *Subscription {
	eval := func(ctx context.Context) ([]byte, func(), error) {
		snap, fp, err := c.materialize(ctx, filter, less)
		if err != nil {
			return nil, nil, err
		}
		return fp, func() { onSnapshot(snap) }, nil
	}
	return c.hub.register(c.path, eval, onError)
}

func (c *Collection[T]) check(doc *T) error {
	if c.validate == nil {
		return nil
	}
	return c.validate(doc)
}

func (c *Collection[T]) lockDoc(id string) func() {
	v, _ := c.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// materialize lists, decodes, filters and orders the collection,
// returning the snapshot plus a fingerprint of (id, body) pairs in
// result order for change suppression.
func (c *Collection[T]) materialize(ctx context.Context, filter func(T) bool, less func(T, T) bool) ([]T, []byte, error) {
	raw, err := c.store.List(ctx, c.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list documents: %w", err)
	}

	type entry struct {
		id   string
		body json.RawMessage
		doc  T
	}
	entries := make([]entry, 0, len(raw))
	for _, d := range raw {
		var doc T
		if err := json.Unmarshal(d.Body, &doc); err != nil {
			return nil, nil, &ValidationError{Detail: fmt.Sprintf("decode document %s", d.ID), Err: err}
		}
		if c.identify != nil {
			c.identify(&doc, d.ID)
		}
		if filter != nil && !filter(doc) {
			continue
		}
		entries = append(entries, entry{id: d.ID, body: d.Body, doc: doc})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if less != nil && less(entries[i].doc, entries[j].doc) {
			return true
		}
		if less != nil && less(entries[j].doc, entries[i].doc) {
			return false
		}
		// tie-break on id so ordering is deterministic
		return entries[i].id < entries[j].id
	})

	snap := make([]T, len(entries))
	var fp []byte
	for i, e := range entries {
		snap[i] = e.doc
		fp = append(fp, e.id...)
		fp = append(fp, 0)
		fp = append(fp, e.body...)
		fp = append(fp, 0)
	}
	return snap, fp, nil
}
