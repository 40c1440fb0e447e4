package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ordena-pos/api/internal/handler"
	"github.com/ordena-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

type mockMenuStore struct {
	getRestaurantBySlugFunc        func(ctx context.Context, slug string) (store.Restaurant, error)
	listMenuItemsFunc              func(ctx context.Context, arg store.ListMenuItemsParams) ([]store.MenuItem, error)
	createMenuItemFunc             func(ctx context.Context, arg store.CreateMenuItemParams) (store.MenuItem, error)
	updateMenuItemPriceFunc        func(ctx context.Context, arg store.UpdateMenuItemPriceParams) (store.MenuItem, error)
	updateMenuItemAvailabilityFunc func(ctx context.Context, arg store.UpdateMenuItemAvailabilityParams) (store.MenuItem, error)
}

func (m *mockMenuStore) GetRestaurantBySlug(ctx context.Context, slug string) (store.Restaurant, error) {
	return m.getRestaurantBySlugFunc(ctx, slug)
}

func (m *mockMenuStore) ListMenuItems(ctx context.Context, arg store.ListMenuItemsParams) ([]store.MenuItem, error) {
	return m.listMenuItemsFunc(ctx, arg)
}

func (m *mockMenuStore) CreateMenuItem(ctx context.Context, arg store.CreateMenuItemParams) (store.MenuItem, error) {
	return m.createMenuItemFunc(ctx, arg)
}

func (m *mockMenuStore) UpdateMenuItemPrice(ctx context.Context, arg store.UpdateMenuItemPriceParams) (store.MenuItem, error) {
	return m.updateMenuItemPriceFunc(ctx, arg)
}

func (m *mockMenuStore) UpdateMenuItemAvailability(ctx context.Context, arg store.UpdateMenuItemAvailabilityParams) (store.MenuItem, error) {
	return m.updateMenuItemAvailabilityFunc(ctx, arg)
}

func newMenuRouter(st handler.MenuStore) chi.Router {
	h := handler.NewMenuHandler(st)
	r := chi.NewRouter()
	r.Get("/r/{slug}/menu", h.PublicList)
	r.Post("/restaurants/{rid}/menu-items", h.Create)
	r.Patch("/restaurants/{rid}/menu-items/{id}", h.Update)
	return r
}

func sampleMenuItem(restaurantID uuid.UUID) store.MenuItem {
	return store.MenuItem{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Name:         "Pupusa Revuelta",
		Category:     "pupusas",
		Price:        decimal.RequireFromString("1.00"),
		IsAvailable:  true,
	}
}

func TestPublicMenuList(t *testing.T) {
	restaurant := store.Restaurant{ID: uuid.New(), Slug: "la-bendicion"}

	var captured store.ListMenuItemsParams
	st := &mockMenuStore{
		getRestaurantBySlugFunc: func(ctx context.Context, slug string) (store.Restaurant, error) {
			if slug != restaurant.Slug {
				return store.Restaurant{}, pgx.ErrNoRows
			}
			return restaurant, nil
		},
		listMenuItemsFunc: func(ctx context.Context, arg store.ListMenuItemsParams) ([]store.MenuItem, error) {
			captured = arg
			return []store.MenuItem{sampleMenuItem(restaurant.ID)}, nil
		},
	}
	router := newMenuRouter(st)

	t.Run("customers see only available items", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/r/la-bendicion/menu", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("status: want 200, got %d", rr.Code)
		}
		if !captured.OnlyAvailable {
			t.Error("default listing must filter to available items")
		}
	})

	t.Run("admin view shows everything", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/r/la-bendicion/menu?available=false", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("status: want 200, got %d", rr.Code)
		}
		if captured.OnlyAvailable {
			t.Error("available=false must disable the availability filter")
		}
	})

	t.Run("unknown restaurant", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/r/nope/menu", nil))
		if rr.Code != http.StatusNotFound {
			t.Errorf("status: want 404, got %d", rr.Code)
		}
	})
}

func TestCreateMenuItem(t *testing.T) {
	restaurantID := uuid.New()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"name":"Pupusa Revuelta","category":"pupusas","price":"1.00"}`, http.StatusCreated},
		{"missing name", `{"category":"pupusas","price":"1.00"}`, http.StatusBadRequest},
		{"bad category", `{"name":"X","category":"tacos","price":"1.00"}`, http.StatusBadRequest},
		{"zero price", `{"name":"X","category":"pupusas","price":"0"}`, http.StatusBadRequest},
		{"negative price", `{"name":"X","category":"pupusas","price":"-1.00"}`, http.StatusBadRequest},
		{"non-numeric price", `{"name":"X","category":"pupusas","price":"a lot"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &mockMenuStore{
				createMenuItemFunc: func(ctx context.Context, arg store.CreateMenuItemParams) (store.MenuItem, error) {
					if arg.RestaurantID != restaurantID {
						t.Errorf("restaurant ID: want %s, got %s", restaurantID, arg.RestaurantID)
					}
					item := sampleMenuItem(restaurantID)
					item.Name = arg.Name
					item.Price = arg.Price
					return item, nil
				},
			}
			router := newMenuRouter(st)

			req := httptest.NewRequest("POST", "/restaurants/"+restaurantID.String()+"/menu-items", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: want %d, got %d (body %s)", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestUpdateMenuItem(t *testing.T) {
	restaurantID := uuid.New()
	item := sampleMenuItem(restaurantID)

	st := &mockMenuStore{
		updateMenuItemPriceFunc: func(ctx context.Context, arg store.UpdateMenuItemPriceParams) (store.MenuItem, error) {
			if arg.ID != item.ID {
				return store.MenuItem{}, pgx.ErrNoRows
			}
			updated := item
			updated.Price = arg.Price
			return updated, nil
		},
		updateMenuItemAvailabilityFunc: func(ctx context.Context, arg store.UpdateMenuItemAvailabilityParams) (store.MenuItem, error) {
			if arg.ID != item.ID {
				return store.MenuItem{}, pgx.ErrNoRows
			}
			updated := item
			updated.IsAvailable = arg.IsAvailable
			return updated, nil
		},
	}
	router := newMenuRouter(st)
	base := "/restaurants/" + restaurantID.String() + "/menu-items/"

	t.Run("price edit", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("PATCH", base+item.ID.String(), strings.NewReader(`{"price":"1.50"}`)))
		if rr.Code != http.StatusOK {
			t.Fatalf("status: want 200, got %d (body %s)", rr.Code, rr.Body.String())
		}
		var resp map[string]interface{}
		if err := decodeBody(rr, &resp); err != nil {
			t.Fatal(err)
		}
		if resp["price"] != "1.50" {
			t.Errorf("price: want 1.50, got %v", resp["price"])
		}
	})

	t.Run("availability toggle", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("PATCH", base+item.ID.String(), strings.NewReader(`{"is_available":false}`)))
		if rr.Code != http.StatusOK {
			t.Fatalf("status: want 200, got %d", rr.Code)
		}
		var resp map[string]interface{}
		if err := decodeBody(rr, &resp); err != nil {
			t.Fatal(err)
		}
		if resp["is_available"] != false {
			t.Errorf("is_available: want false, got %v", resp["is_available"])
		}
	})

	t.Run("empty patch", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("PATCH", base+item.ID.String(), strings.NewReader(`{}`)))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status: want 400, got %d", rr.Code)
		}
	})

	t.Run("invalid price", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("PATCH", base+item.ID.String(), strings.NewReader(`{"price":"-2"}`)))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status: want 400, got %d", rr.Code)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("PATCH", base+uuid.NewString(), strings.NewReader(`{"price":"1.50"}`)))
		if rr.Code != http.StatusNotFound {
			t.Errorf("status: want 404, got %d", rr.Code)
		}
	})
}
