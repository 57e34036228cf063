package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps a service failure to a status code and writes it.
// All handlers share this table so the error taxonomy cannot diverge
// between endpoints.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		writeError(w, http.StatusInternalServerError, "internal server error", logger)
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case model.ErrCodeInvalidQuantity,
		model.ErrCodeInvalidStatus,
		model.ErrCodeProductNotFound,
		model.ErrCodeOrderNotPayable,
		model.ErrCodeInvalidSignature,
		model.ErrCodeMalformedPayload,
		model.ErrCodeMissingField:
		status = http.StatusBadRequest
	case model.ErrCodeForbidden:
		status = http.StatusForbidden
	case model.ErrCodeOrderNotFound:
		status = http.StatusNotFound
	case model.ErrCodeInvalidOrderState:
		status = http.StatusConflict
	case model.ErrCodePaymentProvider:
		status = http.StatusInternalServerError
	}

	writeError(w, status, domainErr.Message, logger)
}
