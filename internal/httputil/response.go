// Package httputil holds the JSON envelope and the request-scoped HTTP
// middleware shared by the REST API.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"meeting-scheduler-api/internal/errs"
)

// ErrorBody is the error envelope of every non-2xx JSON response. Details is
// either a message or a field-to-message map.
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", slog.Any("err", err))
	}
}

func Error(w http.ResponseWriter, status int, kind string, details any) {
	JSON(w, status, ErrorBody{Error: kind, Details: details})
}

// FromError writes the envelope matching err. Internal failures are logged
// with their cause and reported without it.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.ToHTTP(err)
	var (
		ve  *errs.ValidationError
		dpe *errs.DateParseError
	)
	switch {
	case errors.As(err, &ve):
		Error(w, status, "Validation failed", ve.Fields)
	case errors.As(err, &dpe):
		Error(w, status, "Bad request", dpe.Error())
	case errors.Is(err, errs.ErrValidation):
		Error(w, status, "Bad request", err.Error())
	case errors.Is(err, errs.ErrNotFound):
		Error(w, status, "Not found", "The requested resource does not exist")
	case errors.Is(err, errs.ErrDuplicateParticipant):
		Error(w, status, "Conflict", "Participant with this email is already added to this meeting")
	case errors.Is(err, errs.ErrUnauthorized):
		Error(w, status, "Unauthorized", "Missing or invalid bearer token")
	default:
		reqID, _ := FromContext(r.Context())
		slog.ErrorContext(r.Context(), "request failed",
			"req_id", reqID, "method", r.Method, "path", r.URL.Path, "err", err)
		Error(w, status, "Internal server error", "An unexpected error occurred")
	}
}
