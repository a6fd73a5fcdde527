package transfer

import (
	"log/slog"
	"net/http"
	"object-gateway/internal/adapters/handlers/http/chi/v1/response"
	"object-gateway/internal/core/port"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// HandlerV1 is the handler for v1 transfers routes
type HandlerV1 struct {
	gateway port.GatewayService
	logger  *slog.Logger
}

// NewTransferHandlerV1 creates HandlerV1
func NewTransferHandlerV1(gateway port.GatewayService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{gateway: gateway, logger: logger}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{transferID}", h.GetTransferV1)
	return router
}

// V1TransferResponse is the journal record of a transfer
type V1TransferResponse struct {
	ID               uuid.UUID `json:"id"`
	Direction        string    `json:"direction"`
	BucketName       string    `json:"bucket_name"`
	Key              string    `json:"key"`
	State            string    `json:"state"`
	TotalBytes       int64     `json:"total_bytes"`
	TransferredBytes int64     `json:"transferred_bytes"`
	PartCount        int       `json:"part_count"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GetTransferV1 returns the journal record of a running or finished transfer
func (h *HandlerV1) GetTransferV1(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "transferID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.gateway.GetTransfer(r.Context(), id)
	if err != nil {
		response.Error(w, h.logger, "error getting transfer", err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, V1TransferResponse{
		ID:               record.ID,
		Direction:        string(record.Direction),
		BucketName:       record.Location.Bucket,
		Key:              record.Location.Key,
		State:            string(record.State),
		TotalBytes:       record.TotalBytes,
		TransferredBytes: record.TransferredBytes,
		PartCount:        record.PartCount,
		Error:            record.Error,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	})
}
