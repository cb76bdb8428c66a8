package errs

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"google.golang.org/grpc/codes"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrDuplicateParticipant = errors.New("participant already added to meeting")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInternal             = errors.New("internal error")
)

// ValidationError carries per-field messages. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DateParseError reports a range bound that is not ISO-8601.
type DateParseError struct {
	Bound string // start_date or end_date
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: use ISO 8601 format (e.g. 2025-12-01T10:00:00+00:00)", e.Bound, e.Value)
}

func (e *DateParseError) Unwrap() error { return ErrValidation }

func ToHTTP(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateParticipant):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func ToGRPC(err error) codes.Code {
	switch {
	case errors.Is(err, ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrDuplicateParticipant):
		return codes.AlreadyExists
	case errors.Is(err, ErrUnauthorized):
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}
