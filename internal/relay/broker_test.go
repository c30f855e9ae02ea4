package relay

import (
	"testing"
	"time"
)

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker()

	id1, ch1 := b.Subscribe()
	id2, ch2 := b.Subscribe()
	defer b.Unsubscribe(id1)
	defer b.Unsubscribe(id2)

	if b.ClientCount() != 2 {
		t.Fatalf("ClientCount() = %d; want 2", b.ClientCount())
	}

	b.Publish(Event{Feed: FeedRun, Payload: `{"run_id":"x"}`})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Feed != FeedRun {
				t.Fatalf("subscriber %d feed = %q", i, evt.Feed)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	b.Unsubscribe(id)

	if _, open := <-ch; open {
		t.Fatal("channel still open after unsubscribe")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("ClientCount() = %d; want 0", b.ClientCount())
	}

	// a second unsubscribe is a no-op
	b.Unsubscribe(id)
}

func TestBrokerDropsWhenSubscriberFull(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	for i := 0; i < subscriberBufSize+10; i++ {
		b.Publish(Event{Feed: FeedStep, Payload: "{}"})
	}

	// the buffer holds at most subscriberBufSize events; publishing never blocked
	if got := len(ch); got != subscriberBufSize {
		t.Fatalf("buffered events = %d; want %d", got, subscriberBufSize)
	}
}

func TestPublishJSON(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	b.PublishJSON(FeedVerdict, map[string]string{"verdict": "pass"})

	select {
	case evt := <-ch:
		if evt.Feed != FeedVerdict || evt.Payload != `{"verdict":"pass"}` {
			t.Fatalf("event = %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}
