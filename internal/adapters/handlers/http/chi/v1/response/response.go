package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"object-gateway/internal/core/domain"
)

// JSON writes v with status
func JSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("error encoding response", "error", err)
	}
}

// StatusOf maps a gateway error onto an http status
func StatusOf(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrTransferAborted):
		return http.StatusRequestTimeout
	case errors.Is(err, domain.ErrBucketNotFound),
		errors.Is(err, domain.ErrObjectNotFound),
		errors.Is(err, domain.ErrTransferNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSize),
		errors.Is(err, domain.ErrEmptyKey),
		errors.Is(err, domain.ErrInvalidTTL),
		errors.Is(err, domain.ErrInvalidPolicy),
		errors.Is(err, domain.ErrSizeMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFinalizeConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the status matching err. Server side failures are logged and their detail hidden.
func Error(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	status := StatusOf(err)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error(msg, "error", err)
		http.Error(w, http.StatusText(status), status)
	default:
		logger.Warn(msg, "error", err, "status", status)
		http.Error(w, err.Error(), status)
	}
}
