package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ordena-pos/api/internal/cart"
	"github.com/ordena-pos/api/internal/enum"
	"github.com/ordena-pos/api/internal/order"
	"github.com/ordena-pos/api/internal/store"
	"github.com/ordena-pos/api/internal/ticket"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *order.Service; narrow interface for testability.
type OrderServicer interface {
	Create(ctx context.Context, req order.CreateRequest) (store.Order, error)
	UpdateStatus(ctx context.Context, restaurantID, orderID uuid.UUID, next order.Status) (store.Order, error)
	Cancel(ctx context.Context, restaurantID, orderID uuid.UUID) (store.Order, error)
	Deliver(ctx context.Context, restaurantID, orderID uuid.UUID) (store.Order, error)
	Active(ctx context.Context, restaurantID uuid.UUID) ([]store.Order, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *store.Queries.
type OrderStore interface {
	GetRestaurantBySlug(ctx context.Context, slug string) (store.Restaurant, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (store.Restaurant, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (store.Order, error)
	GetOrder(ctx context.Context, arg store.GetOrderParams) (store.Order, error)
}

type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
}

func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// --- Request / Response types ---

type createOrderRequest struct {
	TableNumber string             `json:"table_number"`
	Items       []orderLineRequest `json:"items"`
}

type orderLineRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Dough      string `json:"dough"`
}

type orderResponse struct {
	ID           uuid.UUID         `json:"id"`
	RestaurantID uuid.UUID         `json:"restaurant_id"`
	TableNumber  string            `json:"table_number"`
	Status       string            `json:"status"`
	Total        string            `json:"total"`
	Items        []store.OrderLine `json:"items"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// --- Handlers ---

// Create handles POST /r/{slug}/orders: the customer checkout submit.
// Item prices arrive as captured at add-to-cart time; the total is
// computed from them once, server-side, at submission.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	restaurant, err := h.store.GetRestaurantBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: get restaurant by slug: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TableNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_number is required"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	lines := make([]cart.Line, len(req.Items))
	for i, item := range req.Items {
		menuItemID, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": formatItemError(i, "invalid menu_item_id")})
			return
		}
		if item.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": formatItemError(i, "name is required")})
			return
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil || !price.IsPositive() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": formatItemError(i, "price must be > 0")})
			return
		}
		if item.Dough != "" && item.Dough != enum.DoughMaiz && item.Dough != enum.DoughArroz {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": formatItemError(i, "invalid dough")})
			return
		}
		lines[i] = cart.Line{
			ID:         uuid.New(),
			MenuItemID: menuItemID,
			Name:       item.Name,
			Price:      price,
			Dough:      item.Dough,
		}
	}

	created, err := h.svc.Create(r.Context(), order.CreateRequest{
		RestaurantID: restaurant.ID,
		TableNumber:  req.TableNumber,
		Lines:        lines,
	})
	if err != nil {
		if errors.Is(err, order.ErrEmptyLabel) || errors.Is(err, order.ErrEmptyCart) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(created))
}

// Track handles GET /orders/{id}: the customer tracker's authoritative
// point read, done before (re)subscribing to the order's event stream.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	o, err := h.store.GetOrderByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// ListActive handles GET /restaurants/{rid}/orders/active: the kitchen
// board's authoritative read. Terminal orders never appear here.
func (h *OrderHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	orders, err := h.svc.Active(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list active orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles PATCH /restaurants/{rid}/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), restaurantID, orderID, order.Status(req.Status))
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(updated))
}

// Deliver handles POST /restaurants/{rid}/orders/{id}/deliver: archive
// the ticket. From cooking this runs the two-step ready-then-delivered
// write so the customer alert still fires.
func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	updated, err := h.svc.Deliver(r.Context(), restaurantID, orderID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(updated))
}

// Cancel handles DELETE /restaurants/{rid}/orders/{id}. The kitchen UI
// asks for confirmation before calling this.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	cancelled, err := h.svc.Cancel(r.Context(), restaurantID, orderID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(cancelled))
}

// Ticket handles GET /restaurants/{rid}/orders/{id}/ticket and returns
// the fixed-width printable receipt.
func (h *OrderHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	o, err := h.store.GetOrder(r.Context(), store.GetOrderParams{ID: orderID, RestaurantID: restaurantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for ticket: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	restaurant, err := h.store.GetRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: get restaurant for ticket: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(ticket.RenderOrder(restaurant.Name, o)))
}

// --- Helpers ---

func (h *OrderHandler) pathIDs(w http.ResponseWriter, r *http.Request) (restaurantID, orderID uuid.UUID, ok bool) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return uuid.Nil, uuid.Nil, false
	}
	orderID, err = uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return restaurantID, orderID, true
}

func (h *OrderHandler) writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, order.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
	case errors.Is(err, order.ErrIllegalTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, order.ErrStatusConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: order transition: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func formatItemError(idx int, msg string) string {
	return "items[" + strconv.Itoa(idx) + "]: " + msg
}

func toOrderResponse(o store.Order) orderResponse {
	return orderResponse{
		ID:           o.ID,
		RestaurantID: o.RestaurantID,
		TableNumber:  o.TableNumber,
		Status:       o.Status,
		Total:        o.Total.StringFixed(2),
		Items:        o.Items,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
