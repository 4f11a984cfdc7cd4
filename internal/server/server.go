// Package server implements the HTTP server that exposes the promo pipeline
// via a REST API and serves the submission web UI. The server is started by
// the `promoforge serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/promoforge/promoforge/internal/history"
	"github.com/promoforge/promoforge/internal/logging"
)

// New constructs a Server from the provided processor and config.
func New(proc processor, cfg *Config) (*Server, error) {
	if proc == nil {
		return nil, fmt.Errorf("server: processor must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must cover the slowest pipeline run.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.ProcessTimeout == 0 {
		cfg.ProcessTimeout = 2 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New()
	}
	if cfg.MetricsRegistry == nil {
		cfg.MetricsRegistry = prometheus.DefaultRegisterer
	}
	if cfg.MetricsGatherer == nil {
		cfg.MetricsGatherer = prometheus.DefaultGatherer
	}

	rateLimit := cfg.RateLimit
	if rateLimit == 0 {
		rateLimit = defaultRateLimit
	}
	rateBurst := cfg.RateBurst
	if rateBurst == 0 {
		rateBurst = defaultRateBurst
	}

	s := &Server{
		processor: proc,
		cfg:       cfg,
		log:       cfg.Logger,
		pingers:   cfg.Pingers,
		runs:      cfg.Runs,
		metrics:   newServerMetrics(cfg.MetricsRegistry),
	}

	if cfg.APIKey == "" {
		s.log.Warn("server: PROMOFORGE_API_KEY not set — API authentication disabled")
	}

	rl, stopRL := newRateLimiter(rateLimit, rateBurst, s.log)
	s.stopRL = stopRL

	// Protected routes carry auth and rate limiting; health, readiness,
	// metrics, and the static UI stay open.
	protected := func(h http.Handler) http.Handler {
		return authMiddleware(cfg.APIKey, rl.middleware(h))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /process-promo", protected(http.HandlerFunc(s.handleProcess)))
	mux.Handle("GET /api/history", protected(http.HandlerFunc(s.handleHistory)))
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))
	mux.Handle("/", http.FileServer(http.Dir("ui/static")))

	handler := requestLogger(s.log, s.metricsMiddleware(mux))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server: listening", slog.String("addr", "http://"+s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleProcess handles POST /process-promo. It runs the full pipeline
// against the submitted promo text and returns the enriched result.
// Domain failures are reported in-band as {success:false, error} with
// HTTP 200 — clients branch on the success field, not the status code.
// Only an undecodable request body is a 400.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, processResponse{Success: false, Error: "invalid request body"})
		return
	}
	if req.PromoText == "" {
		writeJSON(w, http.StatusOK, processResponse{Success: false, Error: "promoText is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ProcessTimeout)
	defer cancel()

	s.metrics.processActive.Inc()
	start := time.Now()
	result, err := s.processor.Process(ctx, req.PromoText)
	elapsed := time.Since(start)
	s.metrics.processActive.Dec()

	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		s.metrics.processRequestsTotal.WithLabelValues(outcome).Inc()
		s.metrics.processDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
		s.recordRun(&history.Run{
			Outcome:  history.OutcomeFailure,
			Detail:   err.Error(),
			Duration: elapsed,
		})

		log.Error("process failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", elapsed),
		)
		writeJSON(w, http.StatusOK, processResponse{Success: false, Error: err.Error()})
		return
	}

	s.metrics.processRequestsTotal.WithLabelValues("ok").Inc()
	s.metrics.processDurationSeconds.WithLabelValues("ok").Observe(elapsed.Seconds())
	s.recordRun(&history.Run{
		PromoID:  result.ID.Hex(),
		Headline: result.Fields.Headline(),
		Outcome:  history.OutcomeSuccess,
		Duration: elapsed,
	})

	writeJSON(w, http.StatusOK, processResponse{
		Success:      true,
		ID:           result.ID.Hex(),
		Structured:   result.Fields,
		Template:     result.Template,
		Translations: result.Translations,
		Similar:      result.Similar,
	})
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHistory handles GET /api/history. Returns the most recent pipeline
// runs, newest-first. History can be disabled via PROMOFORGE_HISTORY_DB.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusOK, historyResponse{Enabled: false, Runs: []historyRun{}})
		return
	}

	const defaultLimit = 20
	runs, err := s.runs.Recent(r.Context(), defaultLimit)
	if err != nil {
		log := logging.FromContext(r.Context())
		log.Error("history read failed", slog.String("error", err.Error()))
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	resp := historyResponse{Enabled: true, Runs: make([]historyRun, 0, len(runs))}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, historyRun{
			PromoID:    run.PromoID,
			Headline:   run.Headline,
			Outcome:    string(run.Outcome),
			Detail:     run.Detail,
			DurationMS: run.Duration.Milliseconds(),
			CreatedAt:  run.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// recordRun appends a run to the history store when one is configured.
// History failures are logged, never surfaced to the client.
func (s *Server) recordRun(run *history.Run) {
	if s.runs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.runs.Append(ctx, run); err != nil {
		s.log.Error("server: history append failed", slog.String("error", err.Error()))
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
