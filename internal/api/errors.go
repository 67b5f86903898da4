package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/alecgard/fiveplanner/internal/planner"
	"github.com/alecgard/fiveplanner/internal/roster"
	"github.com/alecgard/fiveplanner/internal/session"
	"github.com/alecgard/fiveplanner/internal/storage"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// errorEnvelope is the standard error response shape.
type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// readJSON decodes the request body into v, enforcing a size limit.
func readJSON(r *http.Request, v any) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}

// readOptionalJSON is readJSON for endpoints whose body may be empty.
func readOptionalJSON(r *http.Request, v any) error {
	if err := readJSON(r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

var validationErrors = []error{
	roster.ErrNameRequired,
	roster.ErrAddressRequired,
	roster.ErrColorInvalid,
	roster.ErrSurfaceTypeInvalid,
	session.ErrDateRequired,
	session.ErrDateInvalid,
	session.ErrTimeInvalid,
	session.ErrLocationRequired,
	session.ErrSessionTypeInvalid,
	session.ErrMaxPlayersInvalid,
	session.ErrDurationInvalid,
	session.ErrStatusInvalid,
	session.ErrScoreInvalid,
	session.ErrPlayerRequired,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeServiceError maps a store or planner error onto the error envelope.
// failure is the message used for unexpected errors.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	switch {
	case errors.Is(err, roster.ErrNotFound), errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, session.ErrNotUpcoming):
		writeError(w, http.StatusConflict, "not_upcoming", err.Error())
	case errors.Is(err, session.ErrNoSelection):
		writeError(w, http.StatusConflict, "no_selection", err.Error())
	case errors.Is(err, planner.ErrEmailUnparsed):
		writeError(w, http.StatusUnprocessableEntity, "email_unparsed", err.Error())
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, storage.ErrWrite):
		slog.Error("storage write failed", "error", err, "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "changes could not be saved")
	default:
		slog.Error(failure, "error", err, "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal_error", failure)
	}
}
