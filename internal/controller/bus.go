package controller

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// eventBus delivers events to every current subscriber in publication
// order. Each subscriber gets its own buffered channel; Publish sends to
// every channel while holding the subscriber-list lock, so two
// concurrent Publish calls can never interleave for a single
// subscriber. A full subscriber channel blocks Publish rather than
// dropping the event: delivery is in-order, not best-effort.
type eventBus struct {
	mu   sync.Mutex
	subs map[string]chan Envelope
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[string]chan Envelope)}
}

// Subscribe registers a new listener and returns its opaque id (for
// Unsubscribe) and the channel it will receive events on.
func (b *eventBus) Subscribe(buffer int) (string, <-chan Envelope) {
	if buffer <= 0 {
		buffer = 256
	}
	id := uuid.New().String()
	ch := make(chan Envelope, buffer)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *eventBus) Unsubscribe(id string) {
	b.mu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Publish delivers e to every current subscriber.
func (b *eventBus) Publish(e Event) {
	env := Envelope{ID: uuid.New().String(), At: time.Now(), Event: e}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		ch <- env
	}
}
