package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vyronlabs/agencyos/internal/ai"
	"github.com/vyronlabs/agencyos/internal/brain"
	"github.com/vyronlabs/agencyos/internal/log"
)

// writeJSON writes a JSON response with the given status code.
// If encoding fails after WriteHeader, the status is already on the wire;
// the error is only logged.
func writeJSON(w http.ResponseWriter, status int, data any, logger log.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("encoding JSON response", "error", err)
	}
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, err, message string, logger log.Logger) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message}, logger)
}

// writeDomainError maps domain errors to HTTP status codes.
// Validation failures are the client's fault; everything else is ours.
func writeDomainError(w http.ResponseWriter, err error, logger log.Logger) {
	switch {
	case errors.Is(err, brain.ErrEmptyContent),
		errors.Is(err, brain.ErrTextTooLong),
		errors.Is(err, brain.ErrInvalidSourceKind),
		errors.Is(err, brain.ErrDimensionMismatch),
		errors.Is(err, ai.ErrEmptyText):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), logger)
	case errors.Is(err, brain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), logger)
	default:
		// Anything else reaching a handler is a storage-layer failure,
		// which is retryable from the client's point of view.
		logger.Error("request failed", "error", err)
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage temporarily unavailable", logger)
	}
}
