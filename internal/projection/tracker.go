package projection

import (
	"sync"

	"github.com/google/uuid"
	"github.com/ordena-pos/api/internal/order"
)

// TrackedStore is the single browser-local key holding the currently
// tracked order id, so the tracker survives a page reload. Cleared once
// the order reaches a terminal status.
type TrackedStore interface {
	Save(id uuid.UUID)
	Load() (uuid.UUID, bool)
	Clear()
}

// MemTrackedStore is the in-memory TrackedStore used by tests and by
// clients without durable local storage.
type MemTrackedStore struct {
	mu  sync.Mutex
	id  uuid.UUID
	set bool
}

func (m *MemTrackedStore) Save(id uuid.UUID) {
	m.mu.Lock()
	m.id, m.set = id, true
	m.mu.Unlock()
}

func (m *MemTrackedStore) Load() (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.set
}

func (m *MemTrackedStore) Clear() {
	m.mu.Lock()
	m.id, m.set = uuid.Nil, false
	m.mu.Unlock()
}

// Tracker projects a single order's status for the customer. The ready
// transition attempts a chime and vibration through the gate; terminal
// transitions clear the persisted order id.
type Tracker struct {
	mu        sync.Mutex
	orderID   uuid.UUID
	status    order.Status
	known     bool
	alert     *Gate
	persisted TrackedStore
}

func NewTracker(orderID uuid.UUID, alert *Gate, persisted TrackedStore) *Tracker {
	if persisted != nil {
		persisted.Save(orderID)
	}
	return &Tracker{orderID: orderID, alert: alert, persisted: persisted}
}

// Resync seeds the tracker from an authoritative point read. Done before
// (re)subscribing; alerts never fire here, only on observed transitions.
func (t *Tracker) Resync(rec Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec.ID != t.orderID {
		return
	}
	t.status = rec.Status
	t.known = true
	if rec.Status.Terminal() {
		t.clearPersisted()
	}
}

// Apply folds one change event into the tracker. A duplicate delivery of
// the current status returns false with no side effects.
func (t *Tracker) Apply(ev Event) bool {
	if ev.Table != ordersTable || ev.Record.ID != t.orderID {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rec := ev.Record
	switch ev.Op {
	case OpInsert:
		if t.known {
			return false
		}
		t.status = rec.Status
		t.known = true
		return true

	case OpUpdate:
		if t.known && t.status == rec.Status {
			return false
		}
		t.status = rec.Status
		t.known = true

		if rec.Status == order.StatusReady {
			t.alert.chime()
			t.alert.vibrate()
		}
		if rec.Status.Terminal() {
			t.clearPersisted()
		}
		return true
	}
	return false
}

func (t *Tracker) clearPersisted() {
	if t.persisted != nil {
		t.persisted.Clear()
	}
}

func (t *Tracker) Status() order.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Screen returns the tracker screen currently shown.
func (t *Tracker) Screen() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.known {
		return order.ScreenSent
	}
	return order.ScreenFor(t.status)
}
