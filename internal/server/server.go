package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/social-api/internal/config"
	"github.com/hongminglow/social-api/internal/http/handlers"
	"github.com/hongminglow/social-api/internal/http/respond"
	"github.com/hongminglow/social-api/internal/middleware"
	"github.com/hongminglow/social-api/internal/service"
	"github.com/hongminglow/social-api/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, store, prometheus.NewRegistry()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewHandler builds the full middleware chain and router. Metrics are
// registered on reg and exposed at /metrics.
func NewHandler(cfg config.Config, store storage.Store, reg *prometheus.Registry) http.Handler {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(reg)

	users := service.NewUserService(store)
	thoughts := service.NewThoughtService(store, service.NewReferenceSync(store))

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.Use(metrics.Middleware, middleware.Timeout(cfg.RequestTimeout))

	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	handlers.NewHealthHandler(time.Now(), store).Register(router)
	handlers.NewUserHandler(users).Register(router)
	handlers.NewThoughtHandler(thoughts).Register(router)

	limited := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)(router)
	return middleware.CORS(cfg.CORSOrigins)(middleware.Logging(limited))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
