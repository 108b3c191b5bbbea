// Package changefeed is an in-process change-notification bus. Services
// publish an event after every successful mutation; subscribers (SSE
// streams, watchers) receive events filtered by table and company and react
// by re-fetching the scoped snapshot. Events carry only identifiers, never
// row data: the snapshot re-fetch is the source of truth.
package changefeed

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Table names carried on events. They match the Postgres table names.
const (
	TableOrders      = "orders"
	TableAssignments = "order_assignments"
	TableBuyList     = "buy_list"
	TableInvitations = "invitations"
	TableProfiles    = "profiles"
)

// Kind tags the mutation that produced an event.
type Kind string

const (
	Inserted Kind = "inserted"
	Updated  Kind = "updated"
	Deleted  Kind = "deleted"
)

// Event is a change notification for one row (or a batch keyed by RowID="").
type Event struct {
	Table     string
	Kind      Kind
	RowID     string
	CompanyID string
}

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "changefeed_events_published_total",
		Help: "Change events published, by table and kind.",
	}, []string{"table", "kind"})
	deliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "changefeed_events_delivered_total",
		Help: "Change events delivered to subscribers.",
	})
	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "changefeed_events_dropped_total",
		Help: "Change events dropped because a subscriber buffer was full.",
	})
	subscriberGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "changefeed_subscribers",
		Help: "Currently registered change feed subscribers.",
	})
)

// subscription is one registered listener.
type subscription struct {
	tables    map[string]bool // empty means all tables
	companyID string          // empty means all companies
	ch        chan Event
}

// Feed fans change events out to subscribers. A nil *Feed is a valid no-op
// publisher so services can be constructed without one in tests.
type Feed struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	closed bool
}

// New creates an empty feed.
func New() *Feed {
	return &Feed{subs: make(map[int]*subscription)}
}

// Publish delivers ev to every matching subscriber. Slow subscribers are
// skipped rather than blocking the publisher; a dropped event is harmless
// because any later event (or a manual refresh) triggers the same re-fetch.
func (f *Feed) Publish(ev Event) {
	if f == nil {
		return
	}
	publishedTotal.WithLabelValues(ev.Table, string(ev.Kind)).Inc()

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	for _, sub := range f.subs {
		if len(sub.tables) > 0 && !sub.tables[ev.Table] {
			continue
		}
		if sub.companyID != "" && ev.CompanyID != "" && sub.companyID != ev.CompanyID {
			continue
		}
		select {
		case sub.ch <- ev:
			deliveredTotal.Inc()
		default:
			droppedTotal.Inc()
		}
	}
}

// Subscribe registers a listener for the given tables (all tables when
// empty) scoped to companyID (all companies when empty). The returned
// channel is closed by the unsubscribe func; unsubscribe is idempotent and
// must always be called to avoid orphaned subscriptions.
func (f *Feed) Subscribe(companyID string, tables ...string) (<-chan Event, func()) {
	sub := &subscription{
		tables:    make(map[string]bool, len(tables)),
		companyID: companyID,
		ch:        make(chan Event, 16),
	}
	for _, t := range tables {
		sub.tables[t] = true
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = sub
	f.mu.Unlock()
	subscriberGauge.Inc()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if _, ok := f.subs[id]; ok {
				delete(f.subs, id)
				subscriberGauge.Dec()
				// Publishers send under the read lock, so closing here
				// cannot race a send.
				close(sub.ch)
			}
		})
	}
	return sub.ch, unsubscribe
}

// Close drops all subscribers and makes further publishes no-ops.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, sub := range f.subs {
		delete(f.subs, id)
		subscriberGauge.Dec()
		close(sub.ch)
	}
}
