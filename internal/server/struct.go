package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/promoforge/promoforge/internal/history"
	"github.com/promoforge/promoforge/internal/pipeline"
	"github.com/promoforge/promoforge/internal/promo"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// ProcessTimeout bounds one promo-processing request end to end. The
	// pipeline makes several sequential LLM calls, so this is generous by
	// default (2 minutes).
	ProcessTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on protected routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Runs is the optional pipeline-run history store. When nil, the
	// /api/history endpoint reports history as disabled.
	Runs runStore
	// MetricsRegistry receives the server's Prometheus metrics. Defaults to
	// prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs the GET /metrics endpoint. Defaults to
	// prometheus.DefaultGatherer.
	MetricsGatherer prometheus.Gatherer
}

// processor is the interface handleProcess calls to run the promo pipeline.
// *pipeline.Pipeline satisfies it; tests inject a fake.
type processor interface {
	Process(ctx context.Context, promoText string) (*pipeline.Result, error)
}

// runStore is the subset of the history store the server reads and writes.
type runStore interface {
	Append(ctx context.Context, run *history.Run) error
	Recent(ctx context.Context, n int) ([]history.Run, error)
}

// Server is the HTTP server that exposes the promo pipeline.
type Server struct {
	// processor runs the promo pipeline for POST /process-promo.
	processor processor
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// runs is the optional pipeline-run history store.
	runs runStore
	// metrics holds the server's Prometheus instruments.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// processRequest is the JSON body for POST /process-promo.
type processRequest struct {
	// PromoText is the raw legal promo text to process.
	PromoText string `json:"promoText"`
}

// processResponse is the JSON envelope for POST /process-promo. Success and
// failure share the envelope; only the populated fields differ.
type processResponse struct {
	Success      bool                    `json:"success"`
	ID           string                  `json:"id,omitempty"`
	Structured   promo.Fields            `json:"structured,omitempty"`
	Template     string                  `json:"template,omitempty"`
	Translations map[string]promo.Fields `json:"translations,omitempty"`
	Similar      []promo.Record          `json:"similar,omitempty"`
	Error        string                  `json:"error,omitempty"`
}

// historyResponse is the JSON body for GET /api/history.
type historyResponse struct {
	// Enabled reports whether run history is configured.
	Enabled bool `json:"enabled"`
	// Runs holds the most recent pipeline runs, newest-first.
	Runs []historyRun `json:"runs"`
}

// historyRun is one run entry in the /api/history response.
type historyRun struct {
	PromoID    string `json:"promoId,omitempty"`
	Headline   string `json:"headline,omitempty"`
	Outcome    string `json:"outcome"`
	Detail     string `json:"detail,omitempty"`
	DurationMS int64  `json:"durationMs"`
	CreatedAt  string `json:"createdAt"`
}
