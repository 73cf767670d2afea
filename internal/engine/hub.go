package engine

import (
	"bytes"
	"context"
	"sync"

	"github.com/alex-morrisonn/trolly/internal/metrics"
	"github.com/alex-morrisonn/trolly/internal/storage"
)

// Hub fans collection change events out to standing queries. One Hub is
// constructed per document-store connection and torn down with Close;
// there are no implicit process-wide instances.
//
// Every event on a watched path marks each of the path's subscriptions
// dirty. Each subscription re-evaluates on its own worker goroutine and
// delivers the full new snapshot only when the materialized ordered
// result actually changed. Delivery order is monotonic per subscriber;
// nothing is guaranteed across subscribers.
type Hub struct {
	store storage.DocumentStore

	mu     sync.Mutex
	paths  map[string]*pathWatcher
	closed bool
}

type pathWatcher struct {
	cancel func()
	subs   map[*Subscription]struct{}
}

// NewHub returns a hub dispatching events from store.
func NewHub(store storage.DocumentStore) *Hub {
	return &Hub{store: store, paths: make(map[string]*pathWatcher)}
}

// Store returns the document store this hub watches.
func (h *Hub) Store() storage.DocumentStore { return h.store }

// Close cancels every subscription and stops all path watchers. The hub
// accepts no further registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var subs []*Subscription
	for _, pw := range h.paths {
		for s := range pw.subs {
			subs = append(subs, s)
		}
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.Cancel()
	}
}

// register wires a standing query against path. eval materializes the
// query, returning a fingerprint for change suppression and a deliver
// closure that pushes the snapshot to the sink.
func (h *Hub) register(path string, eval func(context.Context) ([]byte, func(), error), onError func(error)) *Subscription {
	s := &Subscription{
		hub:     h,
		path:    path,
		eval:    eval,
		onError: onError,
		dirty:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.once.Do(func() { close(s.done) })
		s.deliverInitial()
		return s
	}
	pw := h.paths[path]
	if pw == nil {
		events, cancel := h.store.Watch(path)
		pw = &pathWatcher{cancel: cancel, subs: make(map[*Subscription]struct{})}
		h.paths[path] = pw
		go h.pump(path, events)
	}
	pw.subs[s] = struct{}{}
	h.mu.Unlock()

	metrics.ActiveSubscriptions.Inc()

	// The watcher is attached before the initial evaluation, so a write
	// racing with Subscribe either lands in the initial snapshot or in
	// a queued dirty signal; it is never lost. The fingerprint check in
	// the worker suppresses the duplicate.
	s.deliverInitial()
	go s.run()
	return s
}

// pump forwards store events into dirty signals for the path's
// subscriptions. It exits when the store watcher channel closes.
func (h *Hub) pump(path string, events <-chan storage.Event) {
	for range events {
		h.mu.Lock()
		pw := h.paths[path]
		var subs []*Subscription
		if pw != nil {
			for s := range pw.subs {
				subs = append(subs, s)
			}
		}
		h.mu.Unlock()
		for _, s := range subs {
			s.notify()
		}
	}
}

// Subscription is the live handle of one standing query.
type Subscription struct {
	hub     *Hub
	path    string
	eval    func(context.Context) ([]byte, func(), error)
	onError func(error)

	dirty chan struct{}
	done  chan struct{}
	once  sync.Once

	// owned by the worker goroutine after run starts
	last []byte
}

// Cancel unregisters the query. It takes effect before the next
// dispatch cycle; the hub drops its reference to the sink. Safe to call
// more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		if pw := h.paths[s.path]; pw != nil {
			if _, ok := pw.subs[s]; ok {
				delete(pw.subs, s)
				metrics.ActiveSubscriptions.Dec()
			}
			if len(pw.subs) == 0 {
				pw.cancel()
				delete(h.paths, s.path)
			}
		}
		h.mu.Unlock()
		close(s.done)
	})
}

// Done is closed once the subscription is canceled.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) notify() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *Subscription) deliverInitial() {
	fp, deliver, err := s.eval(context.Background())
	if err != nil {
		s.fail(err)
		return
	}
	s.last = fp
	deliver()
	metrics.HubSnapshots.Inc()
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.dirty:
		}

		fp, deliver, err := s.eval(context.Background())
		if err != nil {
			s.fail(err)
			continue
		}
		if bytes.Equal(fp, s.last) {
			continue
		}
		s.last = fp

		select {
		case <-s.done:
			return
		default:
		}
		deliver()
		metrics.HubSnapshots.Inc()
	}
}

func (s *Subscription) fail(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}
