package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"assetguard/internal/core"
	applog "assetguard/internal/log"
)

// ErrorBody is the JSON error payload.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps an error kind to its HTTP status and a message safe to show.
func statusFor(err error) (int, ErrorBody) {
	var inputErr *core.InputError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusUnprocessableEntity, ErrorBody{Error: inputErr.Message, Field: inputErr.Field}
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusUnprocessableEntity, ErrorBody{Error: err.Error()}
	case errors.Is(err, core.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, ErrorBody{Error: "ledger storage is unavailable"}
	case errors.Is(err, core.ErrConfiguration):
		return http.StatusInternalServerError, ErrorBody{Error: "instrument configuration error"}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: "internal error"}
	}
}

// logFailure logs 5xx failures at error level and rejected input at debug.
func logFailure(r *http.Request, status int, op string, err error) {
	logger := applog.FromContext(r.Context())
	if status >= 500 {
		logger.ErrorContext(r.Context(), "Request failed", applog.FieldOperation, op, applog.FieldError, err)
		return
	}
	logger.DebugContext(r.Context(), "Request rejected", applog.FieldOperation, op, applog.FieldError, err)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorBody{Error: message})
}

// fail writes err as JSON for API requests.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, body := statusFor(err)
	logFailure(r, status, op, err)
	respondJSON(w, status, body)
}

// failHTMX writes err as an HTML fragment plus an error notification.
func failHTMX(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, body := statusFor(err)
	logFailure(r, status, op, err)
	ErrorResponse(status, body.Error).Write(w)
}
