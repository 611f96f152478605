package handler

// RESPONSE HELPERS:
// Every error response from the API has the same shape:
//
//	{"error": "validation_error", "message": "Cannot select more than 5 courses",
//	 "reason": "TooManyCourses", "field": "courseSelections"}
//
// reason and field are present only when the service supplied them.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/course-registration/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`            // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`          // Human-readable description
	Reason  string `json:"reason,omitempty"` // Validation rule that failed, if any
	Field   string `json:"field,omitempty"`  // Request field at fault, if known
}

// MessageResponse is the body of simple acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be set before the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent, so all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a service error to an HTTP status and sends it.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation   → 400 validation_error
//	apperror.ErrUnauthorized → 401 unauthorized
//	apperror.ErrForbidden    → 403 forbidden
//	apperror.ErrNotFound     → 404 not_found
//	apperror.ErrConflict     → 409 conflict
//	anything else            → 500 internal_error (logged, details withheld)
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, errorType := classify(err)
		if status != http.StatusInternalServerError {
			writeJSON(w, status, ErrorResponse{
				Error:   errorType,
				Message: appErr.Message,
				Reason:  appErr.Code,
				Field:   appErr.Field,
			})
			return
		}
	}

	// The raw error can carry SQL, file paths or driver details; it goes
	// to the log only.
	logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeBadRequest sends a 400 for a malformed request body.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: message,
	})
}
