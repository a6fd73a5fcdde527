package file

import (
	"net/http"
	"object-gateway/internal/adapters/handlers/http/chi/v1/response"
	"strconv"
	"time"
)

// V1FileEntry is one object of a listing
type V1FileEntry struct {
	Key          string     `json:"key"`
	Size         int64      `json:"size"`
	LastModified time.Time  `json:"last_modified"`
	URL          string     `json:"url,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// V1ListFilesResponse is the response to a listing
type V1ListFilesResponse struct {
	Prefix string        `json:"prefix"`
	Files  []V1FileEntry `json:"files"`
}

// ListFilesV1 lists bucketName under prefix. Every entry carries a presigned url unless access=false.
func (h *HandlerV1) ListFilesV1(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	bucket := query.Get("bucketName")
	if bucket == "" {
		http.Error(w, "bucketName is required", http.StatusBadRequest)
		return
	}

	withAccess := true
	if raw := query.Get("access"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "access must be a boolean", http.StatusBadRequest)
			return
		}
		withAccess = parsed
	}

	page, err := h.gateway.ListObjects(r.Context(), bucket, query.Get("prefix"), withAccess)
	if err != nil {
		response.Error(w, h.logger, "error listing files", err)
		return
	}

	files := make([]V1FileEntry, 0, len(page.Objects))
	for _, obj := range page.Objects {
		entry := V1FileEntry{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		}
		if obj.Access != nil {
			expiresAt := obj.Access.ExpiresAt
			entry.URL = obj.Access.URL
			entry.ExpiresAt = &expiresAt
		}
		files = append(files, entry)
	}

	response.JSON(w, h.logger, http.StatusOK, V1ListFilesResponse{Prefix: page.Prefix, Files: files})
}
