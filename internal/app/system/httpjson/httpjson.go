// Package httpjson holds the JSON request/response helpers shared by all
// API handlers, including the single place where application errors are
// translated to HTTP status codes.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/galgranov/gke-analyzer/internal/app/system/apperr"
)

// ErrorBody is the wire shape for every error response.
type ErrorBody struct {
	StatusCode   int      `json:"statusCode"`
	Message      string   `json:"message"`
	MissingRoles []string `json:"missingRoles,omitempty"`
}

// Write encodes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads the request body into dst, returning a Validation error on
// malformed JSON so the caller can pass it straight to Error.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.Validation, "malformed request body", err)
	}
	return nil
}

// Error translates an application error to its HTTP status and writes the
// JSON error body. Errors outside the taxonomy are logged with their cause
// and surfaced as a generic 500 without leaking internals.
func Error(w http.ResponseWriter, logger *zap.Logger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		if logger != nil {
			logger.Error("unhandled error", zap.Error(err))
		}
		Write(w, http.StatusInternalServerError, ErrorBody{
			StatusCode: http.StatusInternalServerError,
			Message:    "internal server error",
		})
		return
	}

	status := statusFor(ae.Kind)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("internal error", zap.Error(err))
	}
	Write(w, status, ErrorBody{
		StatusCode:   status,
		Message:      ae.Message,
		MissingRoles: ae.MissingRoles,
	})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Authentication:
		return http.StatusUnauthorized
	case apperr.Authorization:
		return http.StatusForbidden
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Validation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
