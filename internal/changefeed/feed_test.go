package changefeed_test

import (
	"testing"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/changefeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveEvent(t *testing.T, ch <-chan changefeed.Event) changefeed.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return changefeed.Event{}
	}
}

func assertNoEvent(t *testing.T, ch <-chan changefeed.Event) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFeedDeliversToMatchingSubscriber(t *testing.T) {
	feed := changefeed.New()
	defer feed.Close()

	ch, unsubscribe := feed.Subscribe("company-1", changefeed.TableOrders)
	defer unsubscribe()

	feed.Publish(changefeed.Event{Table: changefeed.TableOrders, Kind: changefeed.Inserted, RowID: "o1", CompanyID: "company-1"})

	ev := receiveEvent(t, ch)
	assert.Equal(t, changefeed.TableOrders, ev.Table)
	assert.Equal(t, "o1", ev.RowID)
}

func TestFeedFiltersByTable(t *testing.T) {
	feed := changefeed.New()
	defer feed.Close()

	ch, unsubscribe := feed.Subscribe("company-1", changefeed.TableBuyList)
	defer unsubscribe()

	feed.Publish(changefeed.Event{Table: changefeed.TableOrders, Kind: changefeed.Updated, CompanyID: "company-1"})

	assertNoEvent(t, ch)
}

func TestFeedFiltersByCompany(t *testing.T) {
	feed := changefeed.New()
	defer feed.Close()

	ch, unsubscribe := feed.Subscribe("company-1", changefeed.TableOrders)
	defer unsubscribe()

	feed.Publish(changefeed.Event{Table: changefeed.TableOrders, Kind: changefeed.Updated, CompanyID: "company-2"})

	assertNoEvent(t, ch)
}

func TestFeedBroadcastsEventsWithoutCompany(t *testing.T) {
	feed := changefeed.New()
	defer feed.Close()

	ch, unsubscribe := feed.Subscribe("company-1", changefeed.TableProfiles)
	defer unsubscribe()

	// An event with no company reaches every subscriber of the table.
	feed.Publish(changefeed.Event{Table: changefeed.TableProfiles, Kind: changefeed.Updated, RowID: "p1"})

	ev := receiveEvent(t, ch)
	assert.Equal(t, "p1", ev.RowID)
}

func TestFeedUnsubscribeClosesChannel(t *testing.T) {
	feed := changefeed.New()
	defer feed.Close()

	ch, unsubscribe := feed.Subscribe("", changefeed.TableOrders)

	unsubscribe()
	unsubscribe() // idempotent

	_, open := <-ch
	require.False(t, open)

	// Publishing after unsubscribe must not panic.
	feed.Publish(changefeed.Event{Table: changefeed.TableOrders, Kind: changefeed.Deleted})
}

func TestFeedSubscribeAfterClose(t *testing.T) {
	feed := changefeed.New()
	feed.Close()
	feed.Close() // idempotent

	ch, unsubscribe := feed.Subscribe("company-1")
	defer unsubscribe()

	_, open := <-ch
	require.False(t, open)
}

func TestNilFeedPublishIsNoOp(t *testing.T) {
	var feed *changefeed.Feed

	assert.NotPanics(t, func() {
		feed.Publish(changefeed.Event{Table: changefeed.TableOrders, Kind: changefeed.Inserted})
	})
}
