package projection

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ordena-pos/api/internal/order"
)

// KitchenBoard projects the restaurant's order stream into the active
// list shown to kitchen staff. Terminal orders stay in the map so replays
// for them remain recognizable no-ops; Active filters them out of view.
type KitchenBoard struct {
	mu           sync.Mutex
	restaurantID uuid.UUID
	orders       map[uuid.UUID]Record
	alert        *Gate
}

func NewKitchenBoard(restaurantID uuid.UUID, alert *Gate) *KitchenBoard {
	return &KitchenBoard{
		restaurantID: restaurantID,
		orders:       make(map[uuid.UUID]Record),
		alert:        alert,
	}
}

// Resync replaces local state from an authoritative read. Called before
// (re)subscribing so a torn-down channel never loses or duplicates
// orders. Resync never chimes: these orders are not news.
func (b *KitchenBoard) Resync(records []Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.orders = make(map[uuid.UUID]Record, len(records))
	for _, rec := range records {
		if rec.RestaurantID != b.restaurantID {
			continue
		}
		b.orders[rec.ID] = rec
	}
}

// Apply folds one change event into the board. Returns true if local
// state changed. Redundant deliveries (known insert, update matching the
// current status, unknown update) return false and fire nothing.
func (b *KitchenBoard) Apply(ev Event) bool {
	if ev.Table != ordersTable || ev.Record.RestaurantID != b.restaurantID {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	rec := ev.Record
	switch ev.Op {
	case OpInsert:
		// Replayed inserts of finished orders must not resurrect tickets.
		if rec.Status.Terminal() {
			return false
		}
		if _, known := b.orders[rec.ID]; known {
			return false
		}
		b.orders[rec.ID] = rec
		b.alert.chime()
		return true

	case OpUpdate:
		current, known := b.orders[rec.ID]
		if !known {
			return false
		}
		if current.Status == rec.Status {
			return false
		}
		current.Status = rec.Status
		b.orders[rec.ID] = current
		return true
	}
	return false
}

// ApplyLocal records an operator's optimistic status change before the
// backend confirms it. The echoed realtime event then matches local state
// and is ignored by Apply.
func (b *KitchenBoard) ApplyLocal(orderID uuid.UUID, status order.Status) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, known := b.orders[orderID]
	if !known || current.Status == status {
		return false
	}
	current.Status = status
	b.orders[orderID] = current
	return true
}

// Active returns the visible ticket list: non-terminal orders, oldest
// first (FIFO service discipline).
func (b *KitchenBoard) Active() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Record
	for _, rec := range b.orders {
		if !rec.Status.Terminal() {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
