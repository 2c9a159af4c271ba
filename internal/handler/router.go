package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/prn-tf/inkwell/internal/metrics"
	"github.com/prn-tf/inkwell/internal/repository"
)

// RouterConfig contains the pieces the router wires together.
type RouterConfig struct {
	AuthHandler *AuthHandler
	PostHandler *PostHandler
	Metrics     *metrics.Metrics
	MetricsPath string
	Database    repository.DatabaseHealth
	Logger      zerolog.Logger

	// MaxBodySize caps request bodies in bytes.
	MaxBodySize int64

	// MaxConcurrency caps in-flight requests; excess requests queue.
	MaxConcurrency int
}

// NewRouter builds the HTTP handler tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	if cfg.MaxConcurrency > 0 {
		r.Use(chimiddleware.Throttle(cfg.MaxConcurrency))
	}
	if cfg.MaxBodySize > 0 {
		r.Use(chimiddleware.RequestSize(cfg.MaxBodySize))
	}
	if cfg.Metrics != nil {
		r.Use(RecordMetrics(cfg.Metrics))

		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, cfg.Metrics.Handler())
	}

	r.Get("/healthz", healthHandler(cfg.Database))

	cfg.AuthHandler.RegisterRoutes(r)
	cfg.PostHandler.RegisterRoutes(r)

	return r
}

// healthHandler reports liveness, including database reachability when a
// connection was provided.
func healthHandler(db repository.DatabaseHealth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
