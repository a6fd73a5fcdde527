package file

import (
	"net/http"
	"object-gateway/internal/adapters/handlers/http/chi/v1/response"
)

// DeleteFileV1 removes an object. Deleting a missing object succeeds.
func (h *HandlerV1) DeleteFileV1(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}

	if err := h.gateway.DeleteObject(r.Context(), loc); err != nil {
		response.Error(w, h.logger, "error deleting file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
