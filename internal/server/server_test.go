package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/promoforge/promoforge/internal/history"
	"github.com/promoforge/promoforge/internal/pipeline"
	"github.com/promoforge/promoforge/internal/promo"
)

type fakeProcessor struct {
	result *pipeline.Result
	err    error

	gotText string
}

func (f *fakeProcessor) Process(ctx context.Context, promoText string) (*pipeline.Result, error) {
	f.gotText = promoText
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeRunStore struct {
	appended []*history.Run
	recent   []history.Run
	err      error
}

func (f *fakeRunStore) Append(ctx context.Context, run *history.Run) error {
	f.appended = append(f.appended, run)
	return nil
}

func (f *fakeRunStore) Recent(ctx context.Context, n int) ([]history.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n < len(f.recent) {
		return f.recent[:n], nil
	}
	return f.recent, nil
}

func emptyResult() *pipeline.Result {
	return &pipeline.Result{ID: primitive.NewObjectID(), Fields: promo.Fields{"headline": "x"}}
}

func newTestServer(t *testing.T, proc processor, cfg *Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	reg := prometheus.NewRegistry()
	cfg.MetricsRegistry = reg
	cfg.MetricsGatherer = reg

	s, err := New(proc, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(s.stopRL)
	return s
}

func TestNew_NilProcessor(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, &Config{}); err == nil {
		t.Fatal("expected error for nil processor")
	}
}

func TestHandleProcess_Success(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()
	proc := &fakeProcessor{result: &pipeline.Result{
		ID:       id,
		Fields:   promo.Fields{"headline": "Summer Deal"},
		Template: "<div>{{headline}}</div>",
		Translations: map[string]promo.Fields{
			"es": {"headline": "Oferta de Verano"},
		},
	}}
	runs := &fakeRunStore{}
	s := newTestServer(t, proc, &Config{Runs: runs})

	body := strings.NewReader(`{"promoText":"Get 20% off all summer items."}`)
	req := httptest.NewRequest(http.MethodPost, "/process-promo", body)
	rec := httptest.NewRecorder()
	s.handleProcess(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if proc.gotText != "Get 20% off all summer items." {
		t.Errorf("promo text: got %q", proc.gotText)
	}

	var resp processResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.ID != id.Hex() || resp.Template == "" {
		t.Errorf("response wrong: %+v", resp)
	}
	if resp.Translations["es"]["headline"] != "Oferta de Verano" {
		t.Errorf("translations: %+v", resp.Translations)
	}

	if len(runs.appended) != 1 {
		t.Fatalf("expected 1 history run, got %d", len(runs.appended))
	}
	got := runs.appended[0]
	if got.Outcome != history.OutcomeSuccess || got.PromoID != id.Hex() || got.Headline != "Summer Deal" {
		t.Errorf("history run wrong: %+v", got)
	}
}

func TestHandleProcess_PipelineError(t *testing.T) {
	t.Parallel()

	proc := &fakeProcessor{err: errors.New("model unavailable")}
	runs := &fakeRunStore{}
	s := newTestServer(t, proc, &Config{Runs: runs})

	req := httptest.NewRequest(http.MethodPost, "/process-promo", strings.NewReader(`{"promoText":"x"}`))
	rec := httptest.NewRecorder()
	s.handleProcess(rec, req)

	// Failures are reported in-band; the status code stays 200.
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var resp processResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("error envelope wrong: %+v", resp)
	}
	if len(runs.appended) != 1 || runs.appended[0].Outcome != history.OutcomeFailure {
		t.Errorf("failure run not recorded: %+v", runs.appended)
	}
}

func TestHandleProcess_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		// Only an undecodable body is a transport-level failure; domain
		// errors ride the in-band envelope with a 200.
		{"invalid json", `{not json`, http.StatusBadRequest},
		{"missing promoText", `{}`, http.StatusOK},
		{"empty promoText", `{"promoText":""}`, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			proc := &fakeProcessor{}
			s := newTestServer(t, proc, nil)

			req := httptest.NewRequest(http.MethodPost, "/process-promo", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			s.handleProcess(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tc.wantStatus)
			}
			var resp processResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Success || resp.Error == "" {
				t.Errorf("error envelope wrong: %+v", resp)
			}
			if proc.gotText != "" {
				t.Errorf("pipeline should not run, got text %q", proc.gotText)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeProcessor{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body: %s", rec.Body.String())
	}
}

func TestHandleHistory_Disabled(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeProcessor{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	s.handleHistory(rec, req)

	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Enabled || resp.Runs == nil || len(resp.Runs) != 0 {
		t.Errorf("disabled history wrong: %+v", resp)
	}
}

func TestHandleHistory_ReturnsRuns(t *testing.T) {
	t.Parallel()

	runs := &fakeRunStore{recent: []history.Run{
		{PromoID: "b", Outcome: history.OutcomeSuccess, Duration: 2 * time.Second, CreatedAt: time.Now()},
		{PromoID: "a", Outcome: history.OutcomeFailure, Detail: "timeout", Duration: time.Second, CreatedAt: time.Now()},
	}}
	s := newTestServer(t, &fakeProcessor{}, &Config{Runs: runs})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	s.handleHistory(rec, req)

	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Enabled || len(resp.Runs) != 2 {
		t.Fatalf("response wrong: %+v", resp)
	}
	if resp.Runs[0].PromoID != "b" || resp.Runs[1].Outcome != "failure" {
		t.Errorf("runs wrong: %+v", resp.Runs)
	}
	if resp.Runs[0].DurationMS != 2000 {
		t.Errorf("duration: got %d", resp.Runs[0].DurationMS)
	}
}
