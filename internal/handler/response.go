package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "not_found", "message": "post not found with id abc123"}
// Validation errors also name the offending field:
//   {"error": "validation_error", "message": "email is invalid", "field": "email"}

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/auth"
	"github.com/sakif/devconnector/internal/model"
)

// maxBodyBytes caps request bodies; every payload this API accepts is tiny.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error kind (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Input field at fault, if any
}

// statusByKind maps apperror.Kind values to HTTP status codes. Kinds not
// listed here are server faults and map to 500.
var statusByKind = map[string]int{
	"validation_error": http.StatusBadRequest,
	"duplicate_email":  http.StatusBadRequest,
	"already_liked":    http.StatusBadRequest,
	"not_liked":        http.StatusBadRequest,
	"unauthenticated":  http.StatusUnauthorized,
	"invalid_token":    http.StatusUnauthorized,
	"forbidden":        http.StatusForbidden,
	"not_found":        http.StatusNotFound,
	"conflict":         http.StatusConflict,
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be set before the body: once Encode writes, any
// later header change is silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// The service layer returns apperror values and knows nothing about HTTP;
// this is the one place they become status codes. errors.Is walks the whole
// chain, so a service that wraps with fmt.Errorf("...: %w", appErr) still
// maps correctly.
//
// Server faults never expose their message: it may contain SQL or file paths.
func writeError(w http.ResponseWriter, err error) {
	kind := apperror.Kind(err)

	status, ok := statusByKind[kind]
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   kind,
			Message: "An internal error occurred",
		})
		return
	}

	resp := ErrorResponse{Error: kind, Message: err.Error()}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Field = appErr.Field
	}

	writeJSON(w, status, resp)
}

// decodeJSON reads a single JSON object from the request body into dst.
// A malformed body is reported as a validation error so it maps to 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.ValidationFailed("", fmt.Sprintf("request body must be at most %d bytes", maxErr.Limit))
		}
		return apperror.ValidationFailed("", "request body must be valid JSON")
	}
	return nil
}

// fail logs server faults with the request id, then writes the error.
// Client errors (4xx) are expected traffic and are not logged here.
func fail(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if _, ok := statusByKind[apperror.Kind(err)]; !ok {
		logger.Error("request failed",
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	writeError(w, err)
}

// principal returns the authenticated caller, or writes a 401 and reports
// false when the route was not wrapped by the auth guard.
func principal(w http.ResponseWriter, r *http.Request) (model.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
	}
	return p, ok
}
