package download

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"object-gateway/internal/adapters/handlers/http/chi/v1/response"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/port"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 downloads routes
type HandlerV1 struct {
	gateway port.GatewayService
	dir     string
	logger  *slog.Logger
}

// NewDownloadHandlerV1 creates HandlerV1 writing downloaded objects under dir
func NewDownloadHandlerV1(gateway port.GatewayService, dir string, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{gateway: gateway, dir: dir, logger: logger}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", h.DownloadObjectV1)
	return router
}

// V1DownloadRequest selects the object to download, by key or by prefix and policy
type V1DownloadRequest struct {
	BucketName string `json:"bucket_name"`
	Key        string `json:"key"`
	Prefix     string `json:"prefix"`
	Policy     string `json:"policy"`
}

// V1DownloadResponse describes the downloaded file
type V1DownloadResponse struct {
	BucketName string `json:"bucket_name"`
	Key        string `json:"key"`
	Size       int64  `json:"size"`
	Path       string `json:"path"`
}

// DownloadObjectV1 downloads an object into the download directory, at the path given by its key
func (h *HandlerV1) DownloadObjectV1(w http.ResponseWriter, r *http.Request) {
	var req V1DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.BucketName == "" {
		http.Error(w, "bucket_name is required", http.StatusBadRequest)
		return
	}
	if req.Key == "" && req.Prefix == "" {
		http.Error(w, "key or prefix is required", http.StatusBadRequest)
		return
	}

	sink, err := h.tempFile()
	if err != nil {
		response.Error(w, h.logger, "error preparing download", err)
		return
	}
	tmpPath := sink.Name()

	info, err := h.gateway.DownloadObject(r.Context(), domain.DownloadRequest{
		Bucket: req.BucketName,
		Key:    req.Key,
		Prefix: req.Prefix,
		Policy: domain.SelectionPolicy(req.Policy),
	}, sink)
	closeErr := sink.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close download file: %w", closeErr)
	}
	if err != nil {
		h.remove(tmpPath)
		response.Error(w, h.logger, "error downloading object", err)
		return
	}

	rel, err := filepath.Localize(info.Key)
	if err != nil {
		h.remove(tmpPath)
		http.Error(w, fmt.Sprintf("key %q cannot be stored under the download directory", info.Key), http.StatusBadRequest)
		return
	}
	path := filepath.Join(h.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		h.remove(tmpPath)
		response.Error(w, h.logger, "error preparing download", err)
		return
	}
	if err := os.Rename(tmpPath, path); err != nil {
		h.remove(tmpPath)
		response.Error(w, h.logger, "error moving download", err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, V1DownloadResponse{
		BucketName: req.BucketName,
		Key:        info.Key,
		Size:       info.Size,
		Path:       path,
	})
}

func (h *HandlerV1) tempFile() (*os.File, error) {
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}
	f, err := os.CreateTemp(h.dir, ".download-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create download file: %w", err)
	}
	return f, nil
}

func (h *HandlerV1) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("failed to remove partial download", "error", err, "path", path)
	}
}
