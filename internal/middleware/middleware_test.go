package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"meeting-scheduler-api/internal/auth"
	"meeting-scheduler-api/internal/errs"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestRequireToken(t *testing.T) {
	const secret = "s3cret"
	tok, err := auth.MakeToken("ops", "", secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	h := RequireToken(secret)(http.HandlerFunc(ok))

	tests := []struct {
		name   string
		method string
		header string
		want   int
	}{
		{"read is open", "GET", "", http.StatusNoContent},
		{"write without token", "POST", "", http.StatusUnauthorized},
		{"write with bad token", "DELETE", "Bearer nope", http.StatusUnauthorized},
		{"write with token", "POST", "Bearer " + tok, http.StatusNoContent},
		{"lowercase scheme", "PATCH", "bearer " + tok, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/meetings/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	rec := httptest.NewRecorder()
	RequireToken("")(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest("POST", "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("empty secret should disable auth, got %d", rec.Code)
	}
}

func TestRateLimitHTTP(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := RateLimitHTTP(rl)(http.HandlerFunc(ok))

	do := func(method, addr string) int {
		req := httptest.NewRequest(method, "/api/meetings/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	for i := 0; i < 2; i++ {
		if c := do("POST", "10.0.0.1:5000"); c != http.StatusNoContent {
			t.Fatalf("request %d within burst: %d", i, c)
		}
	}
	if c := do("POST", "10.0.0.1:6000"); c != http.StatusTooManyRequests {
		t.Errorf("third write from same host: %d", c)
	}
	if c := do("GET", "10.0.0.1:6000"); c != http.StatusNoContent {
		t.Errorf("reads are not limited: %d", c)
	}
	if c := do("POST", "10.0.0.2:5000"); c != http.StatusNoContent {
		t.Errorf("other host should have its own bucket: %d", c)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Allow("a")
	rl.sweep(time.Now().Add(time.Hour))
	rl.mu.Lock()
	n := len(rl.clients)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("idle client not evicted, %d left", n)
	}
}

func TestAuthInterceptor(t *testing.T) {
	const secret = "s3cret"
	tok, _ := auth.MakeToken("ops", "", secret, time.Hour)
	intercept := Auth(secret)
	handler := func(ctx context.Context, req any) (any, error) {
		sub, _ := Subject(ctx)
		return sub, nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/scheduler.v1.MeetingService/CheckConflicts"}

	_, err := intercept(context.Background(), nil, info, handler)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("no metadata: %v", err)
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))
	resp, err := intercept(ctx, nil, info, handler)
	if err != nil || resp != "ops" {
		t.Errorf("valid token: %v %v", resp, err)
	}

	health := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	if _, err := intercept(context.Background(), nil, health, handler); err != nil {
		t.Errorf("health should be open: %v", err)
	}
}

func TestLoggingMapsDomainErrors(t *testing.T) {
	intercept := Logging(discard, nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/x/Y"}
	tests := []struct {
		err  error
		want codes.Code
	}{
		{errs.ErrNotFound, codes.NotFound},
		{errs.Invalid("title", "empty"), codes.InvalidArgument},
		{errors.New("db down"), codes.Internal},
		{status.Error(codes.ResourceExhausted, "slow down"), codes.ResourceExhausted},
	}
	for _, tt := range tests {
		_, err := intercept(context.Background(), nil, info, func(context.Context, any) (any, error) { return nil, tt.err })
		if status.Code(err) != tt.want {
			t.Errorf("%v -> %v, want %v", tt.err, status.Code(err), tt.want)
		}
	}

	_, err := intercept(context.Background(), nil, info, func(context.Context, any) (any, error) { return nil, errors.New("db down") })
	if s, _ := status.FromError(err); s.Message() != "internal error" {
		t.Errorf("internal cause leaked: %q", s.Message())
	}
}

func TestRecover(t *testing.T) {
	_, err := Recover(discard)(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"},
		func(context.Context, any) (any, error) { panic("boom") })
	if status.Code(err) != codes.Internal {
		t.Errorf("panic should become Internal, got %v", err)
	}
}
