package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ordena-pos/api/internal/cart"
	"github.com/ordena-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyLabel     = errors.New("customer label is required")
	ErrEmptyCart      = errors.New("order must contain at least one item")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrNotFound       = errors.New("order not found")
	ErrStatusConflict = errors.New("order status changed, please retry")
)

// Store defines the DB methods the service needs. Satisfied by
// *store.Queries; narrow interface for testability.
type Store interface {
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error)
	GetOrder(ctx context.Context, arg store.GetOrderParams) (store.Order, error)
	ListActiveOrders(ctx context.Context, restaurantID uuid.UUID) ([]store.Order, error)
	UpdateOrderStatus(ctx context.Context, arg store.UpdateOrderStatusParams) (store.Order, error)
}

// Broadcaster fans order changes out to realtime subscribers.
type Broadcaster interface {
	OrderCreated(o store.Order)
	OrderUpdated(o store.Order)
}

// Service handles order creation and lifecycle transitions.
type Service struct {
	store        Store
	events       Broadcaster
	archiveDelay time.Duration
}

func NewService(st Store, events Broadcaster, archiveDelay time.Duration) *Service {
	return &Service{store: st, events: events, archiveDelay: archiveDelay}
}

// CreateRequest is the validated input for submitting an order. Lines carry
// prices captured at add-to-cart time; the total is computed from them here,
// once, and is authoritative from then on.
type CreateRequest struct {
	RestaurantID uuid.UUID
	TableNumber  string
	Lines        []cart.Line
}

// Create inserts a pending order with a snapshot of the cart lines and
// notifies the restaurant's kitchen room.
func (s *Service) Create(ctx context.Context, req CreateRequest) (store.Order, error) {
	if strings.TrimSpace(req.TableNumber) == "" {
		return store.Order{}, ErrEmptyLabel
	}
	if len(req.Lines) == 0 {
		return store.Order{}, ErrEmptyCart
	}

	total := decimal.Zero
	items := make([]store.OrderLine, len(req.Lines))
	for i, line := range req.Lines {
		total = total.Add(line.Price)
		items[i] = store.OrderLine{
			LineID:     line.ID.String(),
			MenuItemID: line.MenuItemID.String(),
			Name:       line.Name,
			Price:      line.Price,
			Dough:      line.Dough,
		}
	}

	o, err := s.store.CreateOrder(ctx, store.CreateOrderParams{
		RestaurantID: req.RestaurantID,
		TableNumber:  strings.TrimSpace(req.TableNumber),
		Status:       string(StatusPending),
		Total:        total,
		Items:        items,
	})
	if err != nil {
		return store.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.events.OrderCreated(o)
	return o, nil
}

// UpdateStatus applies one kitchen-triggered transition. The write is a
// compare-and-set against the status read here, so a concurrent transition
// surfaces as ErrStatusConflict instead of silently overwriting.
func (s *Service) UpdateStatus(ctx context.Context, restaurantID, orderID uuid.UUID, next Status) (store.Order, error) {
	if !next.Valid() {
		return store.Order{}, ErrInvalidStatus
	}

	current, err := s.store.GetOrder(ctx, store.GetOrderParams{ID: orderID, RestaurantID: restaurantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Order{}, ErrNotFound
		}
		return store.Order{}, fmt.Errorf("get order: %w", err)
	}

	if err := ValidateTransition(Status(current.Status), next); err != nil {
		return store.Order{}, err
	}

	updated, err := s.store.UpdateOrderStatus(ctx, store.UpdateOrderStatusParams{
		ID:           orderID,
		RestaurantID: restaurantID,
		Status:       string(next),
		FromStatus:   current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Order{}, ErrStatusConflict
		}
		return store.Order{}, fmt.Errorf("update order status: %w", err)
	}

	s.events.OrderUpdated(updated)
	return updated, nil
}

// Cancel rejects an order. Legal from pending and cooking only.
func (s *Service) Cancel(ctx context.Context, restaurantID, orderID uuid.UUID) (store.Order, error) {
	return s.UpdateStatus(ctx, restaurantID, orderID, StatusCancelled)
}

// Deliver archives an order from the operator's perspective. From ready it
// is a single write. From cooking it is a deliberate two-step: set ready
// now, which fires the customer's alert, then set delivered after the
// archive delay. Collapsing the two writes into one would silence the
// customer notification, so don't.
func (s *Service) Deliver(ctx context.Context, restaurantID, orderID uuid.UUID) (store.Order, error) {
	current, err := s.store.GetOrder(ctx, store.GetOrderParams{ID: orderID, RestaurantID: restaurantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Order{}, ErrNotFound
		}
		return store.Order{}, fmt.Errorf("get order: %w", err)
	}

	switch Status(current.Status) {
	case StatusReady:
		return s.UpdateStatus(ctx, restaurantID, orderID, StatusDelivered)

	case StatusCooking:
		updated, err := s.UpdateStatus(ctx, restaurantID, orderID, StatusReady)
		if err != nil {
			return store.Order{}, err
		}
		s.scheduleArchive(restaurantID, orderID)
		return updated, nil
	}

	return store.Order{}, fmt.Errorf("%w: cannot deliver from %s", ErrIllegalTransition, current.Status)
}

// scheduleArchive completes the second half of the two-step deliver. The
// write is fire-and-forget relative to the initiating request; a failure
// only logs, leaving the order in ready for the next operator action.
func (s *Service) scheduleArchive(restaurantID, orderID uuid.UUID) {
	time.AfterFunc(s.archiveDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := s.UpdateStatus(ctx, restaurantID, orderID, StatusDelivered); err != nil {
			log.Printf("ERROR: archive order %s: %v", orderID, err)
		}
	})
}

// Active returns the kitchen's active list for a restaurant.
func (s *Service) Active(ctx context.Context, restaurantID uuid.UUID) ([]store.Order, error) {
	return s.store.ListActiveOrders(ctx, restaurantID)
}
