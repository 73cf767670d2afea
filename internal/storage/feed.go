package storage

import "sync"

// Feed fans change events out to path watchers. Store implementations
// embed one Feed per connection and call Publish after every committed
// mutation.
//
// Each watcher owns an unbounded pending queue drained by its own
// forwarder goroutine, so a slow consumer never blocks Publish, and one
// consumer never blocks another. Events for one watcher are forwarded
// in publish order.
type Feed struct {
	mu       sync.Mutex
	watchers map[*watcher]struct{}
	closed   bool
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{watchers: make(map[*watcher]struct{})}
}

// Publish delivers ev to every watcher registered for ev.Path.
func (f *Feed) Publish(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for w := range f.watchers {
		if w.path == ev.Path {
			w.enqueue(ev)
		}
	}
}

// Watch registers a watcher for path. The cancel func is idempotent;
// after it returns no further events are enqueued and the channel is
// closed once drained.
func (f *Feed) Watch(path string) (<-chan Event, func()) {
	w := &watcher{
		path: path,
		out:  make(chan Event),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go w.run()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		w.stop()
		return w.out, func() {}
	}
	f.watchers[w] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		delete(f.watchers, w)
		f.mu.Unlock()
		w.stop()
	}
	return w.out, cancel
}

// Close stops every watcher and rejects further publishes.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	watchers := make([]*watcher, 0, len(f.watchers))
	for w := range f.watchers {
		watchers = append(watchers, w)
	}
	f.watchers = make(map[*watcher]struct{})
	f.mu.Unlock()

	for _, w := range watchers {
		w.stop()
	}
}

type watcher struct {
	path string
	out  chan Event

	mu      sync.Mutex
	pending []Event

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func (w *watcher) enqueue(ev Event) {
	w.mu.Lock()
	w.pending = append(w.pending, ev)
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *watcher) stop() {
	w.once.Do(func() { close(w.done) })
}

func (w *watcher) run() {
	defer close(w.out)
	for {
		select {
		case <-w.done:
			return
		case <-w.wake:
		}
		for {
			w.mu.Lock()
			if len(w.pending) == 0 {
				w.mu.Unlock()
				break
			}
			ev := w.pending[0]
			w.pending = w.pending[1:]
			w.mu.Unlock()

			select {
			case w.out <- ev:
			case <-w.done:
				return
			}
		}
	}
}
