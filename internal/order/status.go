// Package order holds the order lifecycle: the status state machine, the
// per-transition side-effect contract observed by the kitchen board and
// the customer tracker, and the service that persists transitions.
package order

import (
	"errors"
	"fmt"

	"github.com/ordena-pos/api/internal/enum"
)

// ErrIllegalTransition marks a status move not present in the transition
// table. Handlers map it to 409.
var ErrIllegalTransition = errors.New("illegal status transition")

type Status string

const (
	StatusPending   Status = enum.OrderStatusPending
	StatusCooking   Status = enum.OrderStatusCooking
	StatusReady     Status = enum.OrderStatusReady
	StatusDelivered Status = enum.OrderStatusDelivered
	StatusCancelled Status = enum.OrderStatusCancelled
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCooking, StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses permit no further transitions and are filtered out of
// active views rather than deleted.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// allowedTransitions defines the legal moves. cooking→delivered exists for
// the product variant that skips the ready step on the board; the two-step
// deliver flow still passes through ready on the wire.
var allowedTransitions = map[Status][]Status{
	StatusPending: {StatusCooking, StatusCancelled},
	StatusCooking: {StatusReady, StatusDelivered, StatusCancelled},
	StatusReady:   {StatusDelivered},
}

// ValidateTransition rejects any move not present in the table, including
// every move out of a terminal status.
func ValidateTransition(current, next Status) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("%w: cannot transition from %s", ErrIllegalTransition, current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrIllegalTransition, current, next)
}

// Tracker screens, in lifecycle order.
const (
	ScreenSent     = "sent"
	ScreenCooking  = "cooking"
	ScreenReady    = "ready"
	ScreenFinished = "finished"
)

// Effects is the side-effect contract a single transition produces on the
// two independent observers. Alerts are attempts: whether they actually
// sound is gated by each observer's unlock flag.
type Effects struct {
	KitchenChime   bool
	KitchenRemove  bool
	CustomerChime  bool
	CustomerScreen string
}

// EffectsFor returns the observer effects for an applied transition. The
// zero `from` status means the order just appeared (insert).
func EffectsFor(from, to Status) Effects {
	switch to {
	case StatusPending:
		return Effects{KitchenChime: from == "", CustomerScreen: ScreenSent}
	case StatusCooking:
		return Effects{CustomerScreen: ScreenCooking}
	case StatusReady:
		return Effects{CustomerChime: true, CustomerScreen: ScreenReady}
	case StatusDelivered, StatusCancelled:
		return Effects{KitchenRemove: true, CustomerScreen: ScreenFinished}
	}
	return Effects{}
}

// ScreenFor maps a status to the tracker screen showing it.
func ScreenFor(s Status) string {
	switch s {
	case StatusPending:
		return ScreenSent
	case StatusCooking:
		return ScreenCooking
	case StatusReady:
		return ScreenReady
	case StatusDelivered, StatusCancelled:
		return ScreenFinished
	}
	return ScreenSent
}
