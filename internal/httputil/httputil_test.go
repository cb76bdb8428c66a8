package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"meeting-scheduler-api/internal/errs"
	"meeting-scheduler-api/internal/metrics"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", errs.Invalid("title", "Title cannot be empty"), 400, "Validation failed"},
		{"date", &errs.DateParseError{Bound: "start_date", Value: "x"}, 400, "Bad request"},
		{"not found", fmt.Errorf("get meeting: %w", errs.ErrNotFound), 404, "Not found"},
		{"duplicate", errs.ErrDuplicateParticipant, 409, "Conflict"},
		{"unauthorized", errs.ErrUnauthorized, 401, "Unauthorized"},
		{"internal", errors.New("pq: connection refused"), 500, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, httptest.NewRequest("GET", "/", nil), tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body ErrorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Error != tt.kind {
				t.Errorf("error = %q, want %q", body.Error, tt.kind)
			}
			if tt.status == 500 && strings.Contains(fmt.Sprint(body.Details), "connection refused") {
				t.Error("internal detail leaked to client")
			}
		})
	}
}

func TestValidationDetailsAreFieldMap(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, httptest.NewRequest("POST", "/", nil), errs.Invalid("end_time", "End time must be after start time"))
	var body struct {
		Details map[string]string `json:"details"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Details["end_time"] == "" {
		t.Errorf("details: %+v", body.Details)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	h.ServeHTTP(rec, req)
	if seen != "abc" || rec.Header().Get(HeaderRequestID) != "abc" {
		t.Errorf("forwarded id: ctx=%q header=%q", seen, rec.Header().Get(HeaderRequestID))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if seen == "" || seen == "abc" {
		t.Errorf("expected generated id, got %q", seen)
	}
}

func TestLoggingRecordsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(Logging(slog.New(slog.NewTextHandler(&buf, nil)), m))
	r.Route("/meetings", func(r chi.Router) {
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			})
		})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/meetings/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/meetings/43/", nil))

	// chi drops the trailing slash from nested patterns
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/meetings/{id}", "GET", "418")); got != 2 {
		t.Errorf("request counter = %v", got)
	}
	if !strings.Contains(buf.String(), "route=/meetings/{id}") || !strings.Contains(buf.String(), "status=418") {
		t.Errorf("log line: %s", buf.String())
	}
}
