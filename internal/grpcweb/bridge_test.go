package grpcweb

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"meeting-scheduler-api/internal/rpc"
	"meeting-scheduler-api/internal/service"
	"meeting-scheduler-api/internal/store/sqlite"
)

func setup(t *testing.T) (*service.MeetingService, http.Handler) {
	t.Helper()
	repo, err := sqlite.New(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(repo.Close)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(repo, service.WithLogger(log))

	lis := bufconn.Listen(1 << 20)
	srv, _ := rpc.New(svc, rpc.Options{Log: log})
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return svc, New(conn, log).Handler()
}

// frames splits a gRPC-Web response body into data payloads and the trailer.
func frames(t *testing.T, body []byte) (data [][]byte, trailer string) {
	t.Helper()
	for len(body) >= 5 {
		n := binary.BigEndian.Uint32(body[1:5])
		payload := body[5 : 5+n]
		if body[0]&0x80 != 0 {
			trailer = string(payload)
		} else {
			data = append(data, payload)
		}
		body = body[5+n:]
	}
	return data, trailer
}

func call(t *testing.T, h http.Handler, method string, msg any) (*httptest.ResponseRecorder, [][]byte, string) {
	t.Helper()
	b, _ := json.Marshal(msg)
	req := httptest.NewRequest("POST", "/scheduler.v1.MeetingService/"+method, bytes.NewReader(frame(0, b)))
	req.Header.Set("Content-Type", "application/grpc-web+json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	data, trailer := frames(t, rec.Body.Bytes())
	return rec, data, trailer
}

func TestBridgeForwardsJSONCalls(t *testing.T) {
	svc, h := setup(t)
	start := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	m, err := svc.Create(context.Background(), service.MeetingInput{Title: "Web", StartTime: start, EndTime: start.Add(time.Hour)})
	if err != nil {
		t.Fatal(err)
	}

	rec, data, trailer := call(t, h, "CheckConflicts", rpc.CheckConflictsRequest{MeetingID: m.ID})
	if rec.Header().Get("Content-Type") != "application/grpc-web+json" {
		t.Errorf("content type %q", rec.Header().Get("Content-Type"))
	}
	if trailer != "grpc-status:0\r\n" || len(data) != 1 {
		t.Fatalf("trailer %q, %d data frames", trailer, len(data))
	}
	var resp rpc.CheckConflictsResponse
	if err := json.Unmarshal(data[0], &resp); err != nil {
		t.Fatal(err)
	}
	if resp.MeetingID != m.ID || resp.HasConflicts {
		t.Errorf("response: %+v", resp)
	}

	_, data, trailer = call(t, h, "CheckConflicts", rpc.CheckConflictsRequest{MeetingID: "missing"})
	if len(data) != 0 || !strings.HasPrefix(trailer, "grpc-status:5\r\n") {
		t.Errorf("not found trailer: %q", trailer)
	}
}

func TestBridgeRejects(t *testing.T) {
	_, h := setup(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/scheduler.v1.MeetingService/CheckConflicts", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: %d", rec.Code)
	}

	req := httptest.NewRequest("POST", "/scheduler.v1.MeetingService/CheckConflicts", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("plain json: %d", rec.Code)
	}

	req = httptest.NewRequest("POST", "/scheduler.v1.MeetingService/CheckConflicts", strings.NewReader("ab"))
	req.Header.Set("Content-Type", "application/grpc-web+json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if _, trailer := frames(t, rec.Body.Bytes()); !strings.HasPrefix(trailer, "grpc-status:3\r\n") {
		t.Errorf("short body trailer: %q", trailer)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/scheduler.v1.MeetingService/CheckConflicts", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("preflight: %d", rec.Code)
	}
}

func TestContentSubtype(t *testing.T) {
	tests := map[string]string{
		"application/grpc-web":                "proto",
		"application/grpc-web+json":           "json",
		"Application/GRPC-Web+JSON; charset=x": "json",
	}
	for in, want := range tests {
		if got, ok := contentSubtype(in); !ok || got != want {
			t.Errorf("contentSubtype(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := contentSubtype("application/json"); ok {
		t.Error("application/json accepted")
	}
}
