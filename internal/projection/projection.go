// Package projection applies the realtime change stream to local view
// state. Every application is idempotent, keyed by order id + status, so
// duplicate or replayed deliveries change nothing and fire no second
// side effect. That also makes optimistic local updates safe: a delayed
// echo of an operator's own write matches already-applied state and is
// ignored.
package projection

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ordena-pos/api/internal/order"
	"github.com/ordena-pos/api/internal/store"
)

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
)

// Record is the projected view of one order.
type Record struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	TableNumber  string
	Status       order.Status
	Total        string
	Items        []store.OrderLine
	CreatedAt    time.Time
}

// Event is one change notification from the realtime channel.
type Event struct {
	Table  string
	Op     Op
	Record Record
}

const ordersTable = "orders"

// Alerter is the audio/haptic side channel.
type Alerter interface {
	Chime()
	Vibrate()
}

// Gate wraps an Alerter behind the one-time unlock gesture required by
// browser autoplay rules. Before Unlock, every alert attempt silently
// downgrades to a no-op.
type Gate struct {
	mu       sync.Mutex
	unlocked bool
	alerter  Alerter
}

func NewGate(a Alerter) *Gate {
	return &Gate{alerter: a}
}

func (g *Gate) Unlock() {
	g.mu.Lock()
	g.unlocked = true
	g.mu.Unlock()
}

func (g *Gate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}

func (g *Gate) chime() {
	g.mu.Lock()
	ok := g.unlocked && g.alerter != nil
	g.mu.Unlock()
	if ok {
		g.alerter.Chime()
	}
}

func (g *Gate) vibrate() {
	g.mu.Lock()
	ok := g.unlocked && g.alerter != nil
	g.mu.Unlock()
	if ok {
		g.alerter.Vibrate()
	}
}

// Stream applies events from a subscription channel until the context is
// cancelled or the channel closes. Cancelling the context is the view's
// teardown; the caller then closes the underlying subscription.
func Stream(ctx context.Context, events <-chan Event, apply func(Event) bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			apply(ev)
		}
	}
}
