package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ordena-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

func newTestClient(topic Topic) *Client {
	return &Client{topic: topic, send: make(chan []byte, 8)}
}

func recv(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg := <-c.send:
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func expectSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastReachesOnlySubscribedTopic(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurantID := uuid.New()
	kitchen := newTestClient(RestaurantTopic(restaurantID))
	otherKitchen := newTestClient(RestaurantTopic(uuid.New()))
	hub.register <- kitchen
	hub.register <- otherKitchen

	hub.Broadcast(RestaurantTopic(restaurantID), Event{Type: "order.created", Payload: json.RawMessage(`{}`)})

	ev := recv(t, kitchen)
	if ev.Type != "order.created" {
		t.Errorf("event type: want order.created, got %s", ev.Type)
	}
	expectSilent(t, otherKitchen)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	topic := RestaurantTopic(uuid.New())
	client := newTestClient(topic)
	hub.register <- client
	hub.unregister <- client

	// The send channel is closed on unregister.
	select {
	case _, open := <-client.send:
		if open {
			t.Error("expected closed send channel after unregister")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed after unregister")
	}
}

func TestOrderNotifierRouting(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	o := store.Order{
		ID:           uuid.New(),
		RestaurantID: uuid.New(),
		TableNumber:  "Mesa 2",
		Status:       "pending",
		Total:        decimal.RequireFromString("3.00"),
		Items: []store.OrderLine{
			{LineID: uuid.NewString(), MenuItemID: uuid.NewString(), Name: "Pupusa Revuelta", Price: decimal.RequireFromString("1.00"), Dough: "maiz"},
		},
		CreatedAt: time.Now(),
	}

	kitchen := newTestClient(RestaurantTopic(o.RestaurantID))
	tracker := newTestClient(OrderTopic(o.ID))
	hub.register <- kitchen
	hub.register <- tracker

	notifier := NewOrderNotifier(hub)

	// Created: kitchen room only. The customer just placed this order and
	// already knows about it.
	notifier.OrderCreated(o)
	ev := recv(t, kitchen)
	if ev.Type != EventOrderCreated {
		t.Errorf("kitchen event type: want %s, got %s", EventOrderCreated, ev.Type)
	}
	var payload OrderPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ID != o.ID || payload.Total != "3.00" || len(payload.Items) != 1 {
		t.Errorf("unexpected payload: %+v", payload)
	}
	expectSilent(t, tracker)

	// Updated: both rooms.
	o.Status = "cooking"
	notifier.OrderUpdated(o)

	kitchenEv := recv(t, kitchen)
	trackerEv := recv(t, tracker)
	if kitchenEv.Type != EventOrderUpdated || trackerEv.Type != EventOrderUpdated {
		t.Errorf("update should reach both rooms, got %s / %s", kitchenEv.Type, trackerEv.Type)
	}
}

func TestBroadcastToEmptyRoomIsDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// No subscribers; must not block or panic.
	hub.Broadcast(OrderTopic(uuid.New()), Event{Type: "order.updated", Payload: json.RawMessage(`{}`)})

	client := newTestClient(RestaurantTopic(uuid.New()))
	hub.register <- client
	expectSilent(t, client)
}
