package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"baitlab/internal/api/handlers"
	apimiddleware "baitlab/internal/api/middleware"
	"baitlab/internal/config"
	"baitlab/internal/infrastructure/cache"
	"baitlab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)
	})

	auth := apimiddleware.APIKeyAuth(r.config.Auth.APIKey)

	// Legacy mount kept for callers configured against the bare path.
	router.With(auth).Post("/honeypot", r.handlers.Honeypot.Turn)

	// API v1 routes (authenticated)
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(auth)

		api.Post("/honeypot", r.handlers.Honeypot.Turn)

		api.Get("/stats", r.handlers.Stats.Get)

		api.Route("/engagements", func(eng chi.Router) {
			eng.Get("/", r.handlers.Engagements.List)
			eng.Get("/{sessionID}", r.handlers.Engagements.Get)
		})

		api.Route("/debug", func(debug chi.Router) {
			debug.Post("/score", r.handlers.Debug.Score)
			debug.Post("/normalize", r.handlers.Debug.Normalize)
		})

		// Live-watch stream for operator dashboards
		api.Get("/stream/live", r.handlers.Streaming.HandleWebSocket)
	})

	return router
}
