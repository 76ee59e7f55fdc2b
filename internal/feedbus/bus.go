// Package feedbus fans out oracle events to host-side consumers such as the
// websocket stream and the staleness monitor. The core never publishes here;
// the host does, after a command succeeds.
package feedbus

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Event types.
const (
	TypeAssetRegistered = "asset_registered"
	TypePriceFeed       = "price_feed"
)

// Event is a host-side notification about a successful command.
type Event struct {
	Type   string          `json:"type"`
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price,omitempty"`
	Time   uint64          `json:"time,omitempty"`
}

const subscriberBuffer = 16

// Bus is a non-blocking fan-out. Slow subscribers drop events rather than
// stalling the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a consumer. The returned cancel func must be called to
// release the subscription.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}
