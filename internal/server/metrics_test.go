package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestProcessMetricsRecorded(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	cfg := &Config{MetricsRegistry: reg, MetricsGatherer: reg}
	s, err := New(&fakeProcessor{result: emptyResult()}, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(s.stopRL)

	req := httptest.NewRequest(http.MethodPost, "/process-promo", strings.NewReader(`{"promoText":"x"}`))
	rec := httptest.NewRecorder()
	s.handleProcess(rec, req)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	var sawCounter, sawHistogram bool
	for _, mf := range families {
		switch mf.GetName() {
		case "promoforge_process_requests_total":
			sawCounter = true
			m := mf.GetMetric()
			if len(m) != 1 || m[0].GetCounter().GetValue() != 1 {
				t.Errorf("requests_total wrong: %v", m)
			}
			if got := m[0].GetLabel()[0].GetValue(); got != "ok" {
				t.Errorf("outcome label: got %q", got)
			}
		case "promoforge_process_duration_seconds":
			sawHistogram = true
		}
	}
	if !sawCounter || !sawHistogram {
		t.Errorf("metrics missing: counter=%v histogram=%v", sawCounter, sawHistogram)
	}
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	cfg := &Config{MetricsRegistry: reg, MetricsGatherer: reg}
	s, err := New(&fakeProcessor{result: emptyResult()}, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(s.stopRL)

	// Drive one request through the full handler chain so http metrics exist.
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health via handler chain: got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics endpoint: got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "promoforge_http_requests_total") {
		t.Errorf("metrics body missing http counter:\n%s", body)
	}
}
