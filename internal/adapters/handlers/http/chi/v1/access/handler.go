package access

import (
	"log/slog"
	"net/http"
	"object-gateway/internal/adapters/handlers/http/chi/v1/response"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/port"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 access routes
type HandlerV1 struct {
	gateway port.GatewayService
	logger  *slog.Logger
}

// NewAccessHandlerV1 creates HandlerV1
func NewAccessHandlerV1(gateway port.GatewayService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{gateway: gateway, logger: logger}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/*", h.IssueAccessV1)
	return router
}

// V1IssueAccessResponse is the response to an access request
type V1IssueAccessResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueAccessV1 presigns a download url. ttl is a duration ("15m") or a number of seconds.
func (h *HandlerV1) IssueAccessV1(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	bucket := query.Get("bucketName")
	if bucket == "" {
		http.Error(w, "bucketName is required", http.StatusBadRequest)
		return
	}

	ttl, err := parseTTL(query.Get("ttl"))
	if err != nil {
		http.Error(w, "invalid ttl", http.StatusBadRequest)
		return
	}

	loc := domain.NewObjectLocation(bucket, query.Get("prefix"), chi.URLParam(r, "*"))
	access, err := h.gateway.IssueAccess(r.Context(), loc, ttl)
	if err != nil {
		response.Error(w, h.logger, "error issuing access", err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, V1IssueAccessResponse{
		URL:       access.URL,
		ExpiresAt: access.ExpiresAt,
	})
}

func parseTTL(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(raw)
}
