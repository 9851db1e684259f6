package bus

import (
	"testing"
	"time"
)

func TestPrefixFiltering(t *testing.T) {
	b := New()
	threadCh, unsubThread := b.Subscribe("thread.", 4)
	defer unsubThread()
	allCh, unsubAll := b.Subscribe("", 4)
	defer unsubAll()

	b.Publish(Event{Kind: "thread.loaded", Timestamp: time.Now()})
	b.Publish(Event{Kind: "message.send_ack", Timestamp: time.Now()})

	select {
	case evt := <-threadCh:
		if evt.Kind != "thread.loaded" {
			t.Errorf("kind = %q", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("prefixed subscriber missed thread.loaded")
	}
	select {
	case evt := <-threadCh:
		t.Errorf("prefixed subscriber got foreign event %q", evt.Kind)
	default:
	}

	for _, want := range []string{"thread.loaded", "message.send_ack"} {
		select {
		case evt := <-allCh:
			if evt.Kind != want {
				t.Errorf("kind = %q, want %q", evt.Kind, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("catch-all subscriber missed %q", want)
		}
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("thread.", 1)
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish(Event{Kind: "thread.loaded"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	// Exactly the buffered event survives.
	if len(ch) != 1 {
		t.Errorf("buffered = %d, want 1", len(ch))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("thread.", 4)
	unsub()

	b.Publish(Event{Kind: "thread.loaded"})

	select {
	case evt := <-ch:
		t.Errorf("got %q after unsubscribe", evt.Kind)
	default:
	}
}
