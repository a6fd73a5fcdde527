package file

import (
	"io"
	"net/http"
	"object-gateway/internal/adapters/handlers/http/chi/v1/response"
	"object-gateway/internal/core/domain"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// GetFileV1 streams the object bytes with their content type
func (h *HandlerV1) GetFileV1(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}

	obj, err := h.gateway.GetObject(r.Context(), loc)
	if err != nil {
		response.Error(w, h.logger, "error getting file", err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn("error streaming file", "error", err, "key", loc.Key)
	}
}

// location reads the object key from the path, bucketName and the optional prefix from the query
func (h *HandlerV1) location(w http.ResponseWriter, r *http.Request) (domain.ObjectLocation, bool) {
	bucket := r.URL.Query().Get("bucketName")
	if bucket == "" {
		http.Error(w, "bucketName is required", http.StatusBadRequest)
		return domain.ObjectLocation{}, false
	}

	key := chi.URLParam(r, "*")
	if key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return domain.ObjectLocation{}, false
	}
	return domain.NewObjectLocation(bucket, r.URL.Query().Get("prefix"), key), true
}
