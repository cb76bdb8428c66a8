package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorsAreExposed(t *testing.T) {
	m := New()
	m.HTTPRequests.WithLabelValues("/api/meetings/", "GET", "200").Inc()
	m.ConflictsFound.Add(3)
	m.AuditConflicting.Set(2)

	if got := testutil.ToFloat64(m.ConflictsFound); got != 3 {
		t.Errorf("conflicts counter = %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"scheduler_http_requests_total",
		"scheduler_conflicts_found_total 3",
		"scheduler_audit_conflicting_meetings 2",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}

func TestNewIsIndependent(t *testing.T) {
	a, b := New(), New()
	a.Exports.Inc()
	if testutil.ToFloat64(b.Exports) != 0 {
		t.Error("instances share collectors")
	}
}
