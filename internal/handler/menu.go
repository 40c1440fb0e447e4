package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ordena-pos/api/internal/enum"
	"github.com/ordena-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *store.Queries.
type MenuStore interface {
	GetRestaurantBySlug(ctx context.Context, slug string) (store.Restaurant, error)
	ListMenuItems(ctx context.Context, arg store.ListMenuItemsParams) ([]store.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg store.CreateMenuItemParams) (store.MenuItem, error)
	UpdateMenuItemPrice(ctx context.Context, arg store.UpdateMenuItemPriceParams) (store.MenuItem, error)
	UpdateMenuItemAvailability(ctx context.Context, arg store.UpdateMenuItemAvailabilityParams) (store.MenuItem, error)
}

type MenuHandler struct {
	store MenuStore
}

func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

type menuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	IsAvailable bool      `json:"is_available"`
	ImageURL    string    `json:"image_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type createMenuItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	ImageURL string `json:"image_url"`
}

// updateMenuItemRequest carries the two admin edits: price and
// availability. Exactly one of the two must be present.
type updateMenuItemRequest struct {
	Price       *string `json:"price"`
	IsAvailable *bool   `json:"is_available"`
}

// PublicList handles GET /r/{slug}/menu. Customers only see available
// items; passing available=false shows everything (admin menu page).
func (h *MenuHandler) PublicList(w http.ResponseWriter, r *http.Request) {
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

	onlyAvailable := r.URL.Query().Get("available") != "false"
	items, err := h.store.ListMenuItems(r.Context(), store.ListMenuItemsParams{
		RestaurantID:  restaurant.ID,
		OnlyAvailable: onlyAvailable,
	})
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, item := range items {
		resp[i] = toMenuItemResponse(item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /restaurants/{rid}/menu-items.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	var req createMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if !isValidCategory(req.Category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), store.CreateMenuItemParams{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Category:     req.Category,
		Price:        price,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update handles PATCH /restaurants/{rid}/menu-items/{id}: the admin
// price edit or availability toggle.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req updateMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	switch {
	case req.Price != nil:
		price, err := parsePrice(*req.Price)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		item, err := h.store.UpdateMenuItemPrice(r.Context(), store.UpdateMenuItemPriceParams{
			ID:           itemID,
			RestaurantID: restaurantID,
			Price:        price,
		})
		if err != nil {
			h.writeUpdateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMenuItemResponse(item))

	case req.IsAvailable != nil:
		item, err := h.store.UpdateMenuItemAvailability(r.Context(), store.UpdateMenuItemAvailabilityParams{
			ID:           itemID,
			RestaurantID: restaurantID,
			IsAvailable:  *req.IsAvailable,
		})
		if err != nil {
			h.writeUpdateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMenuItemResponse(item))

	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price or is_available is required"})
	}
}

func (h *MenuHandler) writeUpdateError(w http.ResponseWriter, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}
	log.Printf("ERROR: update menu item: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func parsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("price must be a number")
	}
	if !price.IsPositive() {
		return decimal.Zero, errors.New("price must be > 0")
	}
	return price, nil
}

func isValidCategory(s string) bool {
	switch s {
	case enum.CategoryPupusas, enum.CategoryBebidas, enum.CategoryExtras, enum.CategoryPostres:
		return true
	}
	return false
}

func toMenuItemResponse(m store.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Category:    m.Category,
		Price:       m.Price.StringFixed(2),
		IsAvailable: m.IsAvailable,
		ImageURL:    m.ImageURL,
		UpdatedAt:   m.UpdatedAt,
	}
}
