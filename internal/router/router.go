package router

import (
	"log"
	"net/http"

	"github.com/dennisyang0219/lunch-water/internal/cache"
	"github.com/dennisyang0219/lunch-water/internal/config"
	"github.com/dennisyang0219/lunch-water/internal/database"
	"github.com/dennisyang0219/lunch-water/internal/events"
	"github.com/dennisyang0219/lunch-water/internal/handler"
	mw "github.com/dennisyang0219/lunch-water/internal/middleware"
	"github.com/dennisyang0219/lunch-water/internal/service"
	"github.com/dennisyang0219/lunch-water/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Submitter routes are public; /admin requires a bearer token.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, c cache.Cache, hub *ws.Hub, pub events.Publisher) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Services
	menuService := service.NewMenuService(
		pool,
		func(db database.DBTX) service.MenuStore { return database.New(db) },
		c,
		pub,
	)
	settingsService := service.NewSettingsService(queries, cfg.Cutoff(), c, pub)
	orderService := service.NewOrderService(
		pool,
		func(db database.DBTX) service.OrderStore { return database.New(db) },
		cfg.Location(),
		pub,
	)
	orderingService := service.NewOrderingService(
		pool,
		func(db database.DBTX) service.OrderingStore { return database.New(db) },
		settingsService,
		menuService,
		service.OrderingOptions{Location: cfg.Location(), DefaultCutoff: cfg.Cutoff()},
		pub,
	)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	orderingHandler := handler.NewOrderingHandler(orderingService, menuService, orderService)
	orderingHandler.RegisterRoutes(r)

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Admin routes (require authentication)
	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		storeHandler := handler.NewStoreHandler(menuService)
		r.Route("/stores", storeHandler.RegisterRoutes)

		settingsHandler := handler.NewSettingsHandler(settingsService)
		r.Route("/settings", settingsHandler.RegisterRoutes)

		orderHandler := handler.NewOrderHandler(orderService)
		r.Route("/orders", orderHandler.RegisterRoutes)
	})

	log.Println("Router initialized with all handlers")
	return r
}
