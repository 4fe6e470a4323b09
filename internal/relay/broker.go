package relay

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
)

const subscriberBufSize = 256

// Event is one message fanned out to SSE and WebSocket clients.
type Event struct {
	ID      int64  `json:"id"`
	Feed    string `json:"feed"`
	Payload string `json:"payload"`
}

// Broker fans out events to every subscribed client.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      atomic.Int64
	nextEventID atomic.Int64
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[int64]chan Event),
	}
}

// Subscribe registers a new client. The returned channel is buffered; slow
// consumers have events dropped.
func (b *Broker) Subscribe() (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	ch, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish assigns evt an ID and sends it to all subscribers without blocking.
func (b *Broker) Publish(evt Event) {
	evt.ID = b.nextEventID.Add(1)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// PublishJSON marshals v as the payload of a feed event.
func (b *Broker) PublishJSON(feed string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("relay marshal failed", "feed", feed, "error", err)
		return
	}
	b.Publish(Event{Feed: feed, Payload: string(data)})
}

// ClientCount returns the number of active subscribers.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
