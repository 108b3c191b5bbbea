// Package watch implements the fetch + subscribe + re-fetch pattern shared
// by every scoped resource list. A Watcher owns the current snapshot, a
// loading flag and the last error; any change notification triggers a full
// scoped re-fetch rather than an incremental patch, trading efficiency for
// convergence under out-of-order notifications.
package watch

import (
	"context"
	"sync"

	"github.com/atelierhq/order_tracking_app/internal/changefeed"
)

// FetchFunc loads the full scoped snapshot.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Watcher maintains a snapshot of a scoped list and keeps it fresh from a
// change feed. All methods are safe for concurrent use. After Close, no
// fetch result is ever applied, no matter when it resolves.
type Watcher[T any] struct {
	fetch       FetchFunc[T]
	events      <-chan changefeed.Event
	unsubscribe func()

	mu       sync.Mutex
	snapshot []T
	loading  bool
	err      error
	gen      int // incremented per refresh; stale fetches are discarded
	closed   bool

	cancel  context.CancelFunc
	done    chan struct{}
	kick    chan struct{}
	updated chan struct{} // closed and replaced after every applied snapshot
}

// New creates a Watcher subscribed to feed for the given tables, scoped to
// companyID, and starts the initial fetch. Close must be called to release
// the subscription.
func New[T any](ctx context.Context, fetch FetchFunc[T], feed *changefeed.Feed, companyID string, tables ...string) *Watcher[T] {
	events, unsubscribe := feed.Subscribe(companyID, tables...)
	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher[T]{
		fetch:       fetch,
		events:      events,
		unsubscribe: unsubscribe,
		loading:     true,
		cancel:      cancel,
		done:        make(chan struct{}),
		kick:        make(chan struct{}, 1),
		updated:     make(chan struct{}),
	}
	go w.run(ctx)
	w.Refresh()
	return w
}

// Snapshot returns the current list, the loading flag and the last fetch
// error. On fetch failure the previous snapshot is kept: stale-but-available
// beats an empty flash.
func (w *Watcher[T]) Snapshot() ([]T, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot, w.loading, w.err
}

// Updated returns a channel closed the next time a snapshot is applied.
func (w *Watcher[T]) Updated() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.updated
}

// Refresh requests a full re-fetch. Multiple pending requests coalesce.
func (w *Watcher[T]) Refresh() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Close cancels in-flight fetches and releases the feed subscription.
// Idempotent.
func (w *Watcher[T]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	w.cancel()
	w.unsubscribe()
	<-w.done
}

func (w *Watcher[T]) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.events:
			if !ok {
				return
			}
			w.doFetch(ctx)
		case <-w.kick:
			w.doFetch(ctx)
		}
	}
}

func (w *Watcher[T]) doFetch(ctx context.Context) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.loading = true
	w.gen++
	gen := w.gen
	w.mu.Unlock()

	list, err := w.fetch(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	// Discard results that arrive after Close or after a newer refresh
	// started; the newer fetch reflects at least this state.
	if w.closed || gen != w.gen {
		return
	}
	w.loading = false
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.err = err
	} else {
		w.snapshot = list
		w.err = nil
	}
	close(w.updated)
	w.updated = make(chan struct{})
}
