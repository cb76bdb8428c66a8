package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   codes.Code
	}{
		{"validation", Invalid("title", "Title cannot be empty"), http.StatusBadRequest, codes.InvalidArgument},
		{"date parse", &DateParseError{Bound: "start_date", Value: "nope"}, http.StatusBadRequest, codes.InvalidArgument},
		{"not found", fmt.Errorf("meeting abc: %w", ErrNotFound), http.StatusNotFound, codes.NotFound},
		{"duplicate", fmt.Errorf("insert: %w", ErrDuplicateParticipant), http.StatusConflict, codes.AlreadyExists},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, codes.Unauthenticated},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToHTTP(tt.err); got != tt.status {
				t.Errorf("ToHTTP = %d, want %d", got, tt.status)
			}
			if got := ToGRPC(tt.err); got != tt.code {
				t.Errorf("ToGRPC = %v, want %v", got, tt.code)
			}
		})
	}
}

func TestDateParseErrorNamesBound(t *testing.T) {
	err := error(&DateParseError{Bound: "end_date", Value: "yesterday"})
	var dpe *DateParseError
	if !errors.As(err, &dpe) || dpe.Bound != "end_date" {
		t.Fatalf("expected DateParseError for end_date, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("date parse error should be a validation error")
	}
}
