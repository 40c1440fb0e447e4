package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ordena-pos/api/internal/store"
)

// Event types carried over the wire.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
)

// OrderPayload is the wire shape of an order change event. It carries the
// full snapshot so observers never need a follow-up read for display.
type OrderPayload struct {
	ID           uuid.UUID         `json:"id"`
	RestaurantID uuid.UUID         `json:"restaurant_id"`
	TableNumber  string            `json:"table_number"`
	Status       string            `json:"status"`
	Total        string            `json:"total"`
	Items        []store.OrderLine `json:"items"`
	CreatedAt    time.Time         `json:"created_at"`
}

// OrderNotifier implements the order service's Broadcaster on top of the
// hub. Created orders only reach the restaurant room; updates reach both
// the restaurant room and the order's own tracker room.
type OrderNotifier struct {
	hub *Hub
}

func NewOrderNotifier(hub *Hub) *OrderNotifier {
	return &OrderNotifier{hub: hub}
}

func (n *OrderNotifier) OrderCreated(o store.Order) {
	n.emit(EventOrderCreated, o, false)
}

func (n *OrderNotifier) OrderUpdated(o store.Order) {
	n.emit(EventOrderUpdated, o, true)
}

func (n *OrderNotifier) emit(eventType string, o store.Order, toTracker bool) {
	payload, err := json.Marshal(OrderPayload{
		ID:           o.ID,
		RestaurantID: o.RestaurantID,
		TableNumber:  o.TableNumber,
		Status:       o.Status,
		Total:        o.Total.StringFixed(2),
		Items:        o.Items,
		CreatedAt:    o.CreatedAt,
	})
	if err != nil {
		log.Printf("ERROR: marshal %s payload: %v", eventType, err)
		return
	}

	event := Event{Type: eventType, Payload: payload}
	n.hub.Broadcast(RestaurantTopic(o.RestaurantID), event)
	if toTracker {
		n.hub.Broadcast(OrderTopic(o.ID), event)
	}
}
