// Package events fans out state-change signals (badge counts, re-render
// requests) to whoever is rendering views.
package events

import (
	"log"
	"sync"
)

// Type names a refresh signal.
type Type string

const (
	WishlistCountChanged Type = "wishlist.count"
	NotificationBadge    Type = "notifications.badge"
	NotificationsChanged Type = "notifications.render"
	SettingsChanged      Type = "settings.updated"
	OrderRecorded        Type = "orders.recorded"
)

// Event is one published signal with its payload.
type Event struct {
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Publisher is what state components depend on.
type Publisher interface {
	Publish(Event)
}

// Broker is an in-process fan-out. Slow subscribers drop events rather
// than block publishers.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	buffer int
}

// NewBroker creates a broker whose subscriber channels hold buffer events.
func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 16
	}
	return &Broker{subs: make(map[int]chan Event), buffer: buffer}
}

// Publish delivers e to every subscriber without blocking.
func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			log.Printf("[Broker] Subscriber %d is full, dropping %s", id, e.Type)
		}
	}
}

// Subscribe returns a channel of events and a function that unsubscribes
// and closes it.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscribers.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Discard is a Publisher that drops everything.
type Discard struct{}

// Publish implements Publisher.
func (Discard) Publish(Event) {}
