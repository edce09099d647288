package eventbus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	t.Parallel()

	b := New()
	ch, unsub := b.Subscribe(4)
	defer unsub()

	b.Publish(Event{Type: TypeBroadcastStarted, Data: "morning"})

	select {
	case e := <-ch:
		if e.Type != TypeBroadcastStarted || e.Data != "morning" {
			t.Errorf("event = %+v", e)
		}
		if e.Time.IsZero() {
			t.Error("Time not stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	t.Parallel()

	b := New()
	_, unsub := b.Subscribe(1)
	defer unsub()

	done := make(chan struct{})
	go func() {
		// Buffer of one, three publishes: the extras must be dropped,
		// not queued.
		for i := 0; i < 3; i++ {
			b.Publish(Event{Type: TypeBroadcastDropped})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()

	b := New()
	ch, unsub := b.Subscribe(1)
	unsub()
	unsub()

	// Publishing after unsubscribe must not panic on the closed channel.
	b.Publish(Event{Type: TypeConfigReloaded})

	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}
}
