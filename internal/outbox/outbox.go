// Package outbox queues status writes made optimistically by a view, so a
// failed network write is retried instead of silently leaving local state
// ahead of durable state.
package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/ordena-pos/api/internal/order"
)

// Applier performs the durable status write.
type Applier interface {
	ApplyStatus(ctx context.Context, orderID uuid.UUID, status order.Status) error
}

// Reader reads the authoritative status of an order, used by Reconcile
// after a reconnect.
type Reader interface {
	CurrentStatus(ctx context.Context, orderID uuid.UUID) (order.Status, error)
}

// Write is one pending status write.
type Write struct {
	OrderID    uuid.UUID
	Status     order.Status
	EnqueuedAt time.Time
}

// Outbox is a FIFO queue of pending writes with retry-with-backoff.
// Writes are idempotent on the backend side (compare-and-set keyed by
// order id + status), so retrying a write that actually landed is safe.
type Outbox struct {
	mu         sync.Mutex
	pending    []Write
	applier    Applier
	newBackOff func() backoff.BackOff
}

// New creates an Outbox. newBackOff may be nil, in which case an
// exponential backoff capped at 30s of elapsed retrying is used.
func New(applier Applier, newBackOff func() backoff.BackOff) *Outbox {
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	return &Outbox{applier: applier, newBackOff: newBackOff}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// Enqueue records a pending write. An identical (order, status) entry
// already in the queue is not duplicated.
func (o *Outbox) Enqueue(orderID uuid.UUID, status order.Status) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, w := range o.pending {
		if w.OrderID == orderID && w.Status == status {
			return
		}
	}
	o.pending = append(o.pending, Write{
		OrderID:    orderID,
		Status:     status,
		EnqueuedAt: time.Now(),
	})
}

// Flush drains the queue in order, retrying each write with backoff. On
// a write that exhausts its retries the failed entry and everything after
// it stay queued for the next flush.
func (o *Outbox) Flush(ctx context.Context) error {
	for {
		o.mu.Lock()
		if len(o.pending) == 0 {
			o.mu.Unlock()
			return nil
		}
		w := o.pending[0]
		o.mu.Unlock()

		op := func() error {
			return o.applier.ApplyStatus(ctx, w.OrderID, w.Status)
		}
		if err := backoff.Retry(op, backoff.WithContext(o.newBackOff(), ctx)); err != nil {
			return fmt.Errorf("apply status %s for order %s: %w", w.Status, w.OrderID, err)
		}

		o.mu.Lock()
		// The head may have gained company during the retry; only the
		// entry just written is removed.
		if len(o.pending) > 0 && o.pending[0] == w {
			o.pending = o.pending[1:]
		}
		o.mu.Unlock()
	}
}

// Reconcile compares each pending write against authoritative state and
// drops entries the backend already reflects, plus entries whose
// transition is no longer legal (someone else moved the order on). Run
// after a reconnect, before resuming Flush.
func (o *Outbox) Reconcile(ctx context.Context, reader Reader) error {
	o.mu.Lock()
	pending := make([]Write, len(o.pending))
	copy(pending, o.pending)
	o.mu.Unlock()

	var keep []Write
	for _, w := range pending {
		current, err := reader.CurrentStatus(ctx, w.OrderID)
		if err != nil {
			return fmt.Errorf("read status for order %s: %w", w.OrderID, err)
		}
		if current == w.Status {
			continue // already applied
		}
		if order.ValidateTransition(current, w.Status) != nil {
			continue // stale: the order moved past this write
		}
		keep = append(keep, w)
	}

	o.mu.Lock()
	o.pending = keep
	o.mu.Unlock()
	return nil
}

func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Writes returns a copy of the pending queue, oldest first.
func (o *Outbox) Writes() []Write {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Write, len(o.pending))
	copy(out, o.pending)
	return out
}
