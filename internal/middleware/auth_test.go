package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ordena-pos/api/internal/auth"
	"github.com/ordena-pos/api/internal/enum"
)

const testSecret = "test-secret"

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// withClaims injects claims the way Authenticate would.
func withClaims(claims *auth.Claims) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	restaurantID := uuid.New()
	token, err := auth.GenerateToken(testSecret, userID, restaurantID, enum.UserRoleKitchen)
	if err != nil {
		t.Fatal(err)
	}

	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || claims.UserID != userID {
			t.Error("claims not propagated to the request context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: want %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestRequireRestaurant(t *testing.T) {
	restaurantID := uuid.New()

	newRouter := func(claims *auth.Claims) chi.Router {
		r := chi.NewRouter()
		r.Route("/restaurants/{rid}", func(r chi.Router) {
			r.Use(withClaims(claims))
			r.Use(RequireRestaurant)
			r.Get("/orders", okHandler)
		})
		return r
	}

	t.Run("kitchen user own restaurant", func(t *testing.T) {
		claims := &auth.Claims{UserID: uuid.New(), RestaurantID: restaurantID, Role: enum.UserRoleKitchen}
		rr := httptest.NewRecorder()
		newRouter(claims).ServeHTTP(rr, httptest.NewRequest("GET", "/restaurants/"+restaurantID.String()+"/orders", nil))
		if rr.Code != http.StatusOK {
			t.Errorf("status: want 200, got %d", rr.Code)
		}
	})

	t.Run("kitchen user other restaurant", func(t *testing.T) {
		claims := &auth.Claims{UserID: uuid.New(), RestaurantID: uuid.New(), Role: enum.UserRoleKitchen}
		rr := httptest.NewRecorder()
		newRouter(claims).ServeHTTP(rr, httptest.NewRequest("GET", "/restaurants/"+restaurantID.String()+"/orders", nil))
		if rr.Code != http.StatusForbidden {
			t.Errorf("status: want 403, got %d", rr.Code)
		}
	})

	t.Run("owner crosses tenants", func(t *testing.T) {
		claims := &auth.Claims{UserID: uuid.New(), Role: enum.UserRoleOwner}
		rr := httptest.NewRecorder()
		newRouter(claims).ServeHTTP(rr, httptest.NewRequest("GET", "/restaurants/"+restaurantID.String()+"/orders", nil))
		if rr.Code != http.StatusOK {
			t.Errorf("status: want 200, got %d", rr.Code)
		}
	})

	t.Run("no claims", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(rr, httptest.NewRequest("GET", "/restaurants/"+restaurantID.String()+"/orders", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: want 401, got %d", rr.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	handler := withClaims(&auth.Claims{Role: enum.UserRoleKitchen})(
		RequireRole(enum.UserRoleOwner)(http.HandlerFunc(okHandler)),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/restaurants", nil))
	if rr.Code != http.StatusForbidden {
		t.Errorf("kitchen hitting an owner route: want 403, got %d", rr.Code)
	}

	handler = withClaims(&auth.Claims{Role: enum.UserRoleOwner})(
		RequireRole(enum.UserRoleOwner)(http.HandlerFunc(okHandler)),
	)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/restaurants", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("owner hitting an owner route: want 200, got %d", rr.Code)
	}
}
