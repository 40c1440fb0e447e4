package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ordena-pos/api/internal/middleware"
	"github.com/ordena-pos/api/internal/store"
)

// RestaurantStore defines the database methods needed by restaurant
// handlers. Satisfied by *store.Queries.
type RestaurantStore interface {
	GetRestaurantBySlug(ctx context.Context, slug string) (store.Restaurant, error)
	CreateRestaurant(ctx context.Context, arg store.CreateRestaurantParams) (store.Restaurant, error)
	ListRestaurantsByOwner(ctx context.Context, ownerID uuid.UUID) ([]store.Restaurant, error)
}

type RestaurantHandler struct {
	store RestaurantStore
}

func NewRestaurantHandler(store RestaurantStore) *RestaurantHandler {
	return &RestaurantHandler{store: store}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type restaurantResponse struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logo_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type createRestaurantRequest struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

// GetBySlug handles GET /r/{slug}: the public catalog read a customer's
// menu page starts from.
func (h *RestaurantHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
}

// Create handles POST /restaurants (OWNER only).
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if !slugPattern.MatchString(req.Slug) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "slug must be lowercase letters, digits and hyphens"})
		return
	}

	restaurant, err := h.store.CreateRestaurant(r.Context(), store.CreateRestaurantParams{
		Slug:    req.Slug,
		Name:    req.Name,
		LogoURL: req.LogoURL,
		OwnerID: claims.UserID,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "slug already taken"})
			return
		}
		log.Printf("ERROR: create restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toRestaurantResponse(restaurant))
}

// List handles GET /restaurants (OWNER only): the owner's dashboard list.
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	restaurants, err := h.store.ListRestaurantsByOwner(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list restaurants: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]restaurantResponse, len(restaurants))
	for i, rest := range restaurants {
		resp[i] = toRestaurantResponse(rest)
	}
	writeJSON(w, http.StatusOK, resp)
}

func toRestaurantResponse(r store.Restaurant) restaurantResponse {
	return restaurantResponse{
		ID:        r.ID,
		Slug:      r.Slug,
		Name:      r.Name,
		LogoURL:   r.LogoURL,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}
