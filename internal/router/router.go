package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ordena-pos/api/internal/config"
	"github.com/ordena-pos/api/internal/enum"
	"github.com/ordena-pos/api/internal/handler"
	mw "github.com/ordena-pos/api/internal/middleware"
	"github.com/ordena-pos/api/internal/order"
	"github.com/ordena-pos/api/internal/store"
	"github.com/ordena-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up. Customer
// routes (menu browse, order submit, tracker) are public; kitchen and
// admin routes sit behind JWT auth and tenant scoping.
func New(cfg *config.Config, queries *store.Queries, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	orderService := order.NewService(queries, ws.NewOrderNotifier(hub), cfg.ArchiveDelay)
	orderHandler := handler.NewOrderHandler(orderService, queries)
	restaurantHandler := handler.NewRestaurantHandler(queries)
	menuHandler := handler.NewMenuHandler(queries)

	// Public customer routes: the order ID is the tracker capability.
	r.Route("/r/{slug}", func(r chi.Router) {
		r.Get("/", restaurantHandler.GetBySlug)
		r.Get("/menu", menuHandler.PublicList)
		r.Post("/orders", orderHandler.Create)
	})
	r.Get("/orders/{id}", orderHandler.Track)

	// WebSocket routes (kitchen socket authenticates via query token)
	r.Get("/ws/restaurants/{rid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeKitchenWS(hub, cfg.JWTSecret, w, r)
	})
	r.Get("/ws/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeTrackerWS(hub, w, r)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Owner dashboard
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleOwner))
			r.Post("/restaurants", restaurantHandler.Create)
			r.Get("/restaurants", restaurantHandler.List)
		})

		// Tenant-scoped kitchen and admin routes
		r.Route("/restaurants/{rid}", func(r chi.Router) {
			r.Use(mw.RequireRestaurant)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/active", orderHandler.ListActive)
				r.Patch("/{id}/status", orderHandler.UpdateStatus)
				r.Post("/{id}/deliver", orderHandler.Deliver)
				r.Delete("/{id}", orderHandler.Cancel)
				r.Get("/{id}/ticket", orderHandler.Ticket)
			})

			r.Route("/menu-items", func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleOwner))
				r.Post("/", menuHandler.Create)
				r.Patch("/{id}", menuHandler.Update)
			})
		})
	})

	return r
}
