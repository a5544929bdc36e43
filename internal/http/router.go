package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/placereviews/internal/auth"
	"github.com/redmonkez12/placereviews/internal/config"
	"github.com/redmonkez12/placereviews/internal/httputil"
	"github.com/redmonkez12/placereviews/internal/logging"
	"github.com/redmonkez12/placereviews/internal/metrics"
	"github.com/redmonkez12/placereviews/internal/place"
	"github.com/redmonkez12/placereviews/internal/review"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth           *auth.Handler
	AuthMiddleware *auth.Middleware
	Reviews        *review.Handler
	Places         *place.Handler
	// Metrics and Gatherer are optional; /metrics is only mounted when both are set.
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first. Bearer tokens travel in a header, so cookies are never needed.
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: false,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders(SecurityOptions{HSTS: !cfg.Server.IsDevelopment()}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)
	if h.Metrics != nil && h.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(h.Gatherer))
	}

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/index.html")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Auth routes (public)
	r.Post("/register", h.Auth.Register)
	r.Post("/token", h.Auth.Login)
	r.Post("/google-login", h.Auth.GoogleLogin)

	// Listing is public; creating requires a session.
	r.Get("/reviews", h.Reviews.List)
	r.Get("/places", h.Places.List)

	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware.RequireAuth)
		r.Get("/me", h.Auth.Me)
		r.Post("/reviews", h.Reviews.Create)
		r.Post("/places", h.Places.Create)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
