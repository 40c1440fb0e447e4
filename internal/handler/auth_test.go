package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ordena-pos/api/internal/auth"
	"github.com/ordena-pos/api/internal/enum"
	"github.com/ordena-pos/api/internal/handler"
	"github.com/ordena-pos/api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type mockAuthStore struct {
	getUserByEmailFunc func(ctx context.Context, email string) (store.User, error)
	getUserFunc        func(ctx context.Context, id uuid.UUID) (store.User, error)
}

func (m *mockAuthStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	return m.getUserByEmailFunc(ctx, email)
}

func (m *mockAuthStore) GetUser(ctx context.Context, id uuid.UUID) (store.User, error) {
	return m.getUserFunc(ctx, id)
}

func testUser(t *testing.T, password string) store.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return store.User{
		ID:             uuid.New(),
		RestaurantID:   uuid.New(),
		Email:          "cocina@pupuseria.dev",
		HashedPassword: string(hash),
		Role:           enum.UserRoleKitchen,
	}
}

func decodeBody(rr *httptest.ResponseRecorder, v interface{}) error {
	return json.NewDecoder(rr.Body).Decode(v)
}

func newAuthRouter(st handler.AuthStore) chi.Router {
	r := chi.NewRouter()
	handler.NewAuthHandler(st, testSecret).RegisterRoutes(r)
	return r
}

func TestLogin(t *testing.T) {
	user := testUser(t, "cocina123")
	st := &mockAuthStore{
		getUserByEmailFunc: func(ctx context.Context, email string) (store.User, error) {
			if email != user.Email {
				return store.User{}, pgx.ErrNoRows
			}
			return user, nil
		},
	}
	router := newAuthRouter(st)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid credentials", `{"email":"cocina@pupuseria.dev","password":"cocina123"}`, http.StatusOK},
		{"wrong password", `{"email":"cocina@pupuseria.dev","password":"nope"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"nobody@pupuseria.dev","password":"cocina123"}`, http.StatusUnauthorized},
		{"missing fields", `{"email":"cocina@pupuseria.dev"}`, http.StatusBadRequest},
		{"invalid JSON", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: want %d, got %d (body %s)", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	user := testUser(t, "cocina123")
	st := &mockAuthStore{
		getUserByEmailFunc: func(ctx context.Context, email string) (store.User, error) {
			return user, nil
		},
	}
	router := newAuthRouter(st)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"cocina@pupuseria.dev","password":"cocina123"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", rr.Code)
	}

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeBody(rr, &resp); err != nil {
		t.Fatal(err)
	}

	claims, err := auth.ValidateToken(testSecret, resp.AccessToken)
	if err != nil {
		t.Fatalf("issued access token does not validate: %v", err)
	}
	if claims.UserID != user.ID || claims.RestaurantID != user.RestaurantID || claims.Role != user.Role {
		t.Errorf("token claims do not match the user: %+v", claims)
	}

	if _, err := auth.ValidateRefreshToken(testSecret, resp.RefreshToken); err != nil {
		t.Errorf("issued refresh token does not validate: %v", err)
	}
}

func TestRefresh(t *testing.T) {
	user := testUser(t, "cocina123")
	st := &mockAuthStore{
		getUserFunc: func(ctx context.Context, id uuid.UUID) (store.User, error) {
			if id != user.ID {
				return store.User{}, pgx.ErrNoRows
			}
			return user, nil
		},
	}
	router := newAuthRouter(st)

	refreshToken, err := auth.GenerateRefreshToken(testSecret, user.ID)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid refresh token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/refresh", strings.NewReader(`{"refresh_token":"`+refreshToken+`"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("status: want 200, got %d (body %s)", rr.Code, rr.Body.String())
		}
	})

	t.Run("garbage refresh token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/refresh", strings.NewReader(`{"refresh_token":"not.a.token"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: want 401, got %d", rr.Code)
		}
	})

	t.Run("deleted user", func(t *testing.T) {
		gone, err := auth.GenerateRefreshToken(testSecret, uuid.New())
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest("POST", "/auth/refresh", strings.NewReader(`{"refresh_token":"`+gone+`"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: want 401, got %d", rr.Code)
		}
	})
}
