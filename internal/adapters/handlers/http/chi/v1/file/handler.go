package file

import (
	"log/slog"
	"object-gateway/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 files routes
type HandlerV1 struct {
	gateway    port.GatewayService
	formMemory int64
	logger     *slog.Logger
}

// NewFileHandlerV1 creates HandlerV1.
// formMemory bounds the part of a multipart form kept in memory, the rest spills to temp files.
func NewFileHandlerV1(gateway port.GatewayService, formMemory int64, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		gateway:    gateway,
		formMemory: formMemory,
		logger:     logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/upload", h.UploadFileV1)
	router.Get("/", h.ListFilesV1)
	router.Get("/*", h.GetFileV1)
	router.Delete("/*", h.DeleteFileV1)

	return router
}
