package chi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"object-gateway/internal/adapters/handlers/http/chi/v1/access"
	"object-gateway/internal/adapters/handlers/http/chi/v1/download"
	"object-gateway/internal/adapters/handlers/http/chi/v1/file"
	"object-gateway/internal/adapters/handlers/http/chi/v1/transfer"
	"object-gateway/internal/adapters/metrics"
	"object-gateway/internal/config"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups the route handlers. A nil handler leaves its routes unmounted.
type Handlers struct {
	File     *file.HandlerV1
	Access   *access.HandlerV1
	Download *download.HandlerV1
	Transfer *transfer.HandlerV1
}

// NewRouter builds http.Handler with chi. metrics may be nil.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, cfg config.ServerConfig, env string, handlers Handlers) http.Handler {
	r := chi.NewRouter()

	//handle requestID to facilitate debug (X-Request-ID)
	//It fetches from request if exists, or creates it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxBodySize))
	}

	if env != "prod" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if handlers.File != nil {
		r.Mount("/files", handlers.File.Routes())
	}
	if handlers.Access != nil {
		r.Mount("/access", handlers.Access.Routes())
	}
	if handlers.Download != nil {
		r.Mount("/downloads", handlers.Download.Routes())
	}
	if handlers.Transfer != nil {
		r.Mount("/transfers", handlers.Transfer.Routes())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
