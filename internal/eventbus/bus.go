// Package eventbus is a small in-memory fanout used to decouple the
// broadcast pipeline from whatever wants to observe it.
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Well-known event types published by the bot.
const (
	TypeBroadcastStarted  = "broadcast.started"
	TypeBroadcastFinished = "broadcast.finished"
	TypeBroadcastDropped  = "broadcast.dropped"
	TypeConfigReloaded    = "config.reloaded"
	TypeSubscriberRemoved = "subscriber.removed"
)

// Event is a lightweight in-memory signal.
//
// Publish never blocks; slow subscribers drop events. Data should be small.
type Event struct {
	Type string
	Time time.Time
	Data any
}

type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
}

// New returns an in-memory bus. It owns no background goroutines.
func New() Bus {
	return &memBus{subs: map[uint64]chan Event{}}
}

type memBus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Event
	seq  atomic.Uint64
}

func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.mu.RLock()
	chs := make([]chan Event, 0, len(b.subs))
	for _, ch := range b.subs {
		chs = append(chs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range chs {
		// Non-blocking; a concurrently closed channel would panic the send.
		func() {
			defer func() { _ = recover() }()
			select {
			case ch <- e:
			default:
			}
		}()
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}
