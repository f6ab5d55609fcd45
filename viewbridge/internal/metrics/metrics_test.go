package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObservePass(t *testing.T) {
	m := New()
	m.ObservePass(OutcomeOK, 5*time.Millisecond, 120, 7, 2)
	m.ObservePass(OutcomeNoHook, time.Millisecond, 0, 0, 0)
	m.Notification()

	if got := testutil.ToFloat64(m.passes.WithLabelValues(OutcomeOK)); got != 1 {
		t.Errorf("ok passes: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.passes.WithLabelValues(OutcomeNoHook)); got != 1 {
		t.Errorf("no_hook passes: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.viewStateSize); got != 7 {
		t.Errorf("view_state_entries: got %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.nodesVisited); got != 120 {
		t.Errorf("nodes_visited: got %v, want 120 (no_hook pass must not reset it)", got)
	}
	if got := testutil.ToFloat64(m.notifications); got != 1 {
		t.Errorf("notifications: got %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObservePass(OutcomeOK, time.Millisecond, 1, 1, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if !strings.Contains(string(body), "viewbridge_passes_total") {
		t.Fatalf("exposition missing passes_total:\n%s", body)
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Two bridges in one process must not panic on duplicate registration.
	a, b := New(), New()
	if a.Registry() == b.Registry() {
		t.Fatal("registries are shared")
	}
}
