package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/promoforge/promoforge/internal/logging"
)

// probeTimeout bounds each dependency probe during a readiness check.
const probeTimeout = 5 * time.Second

// Pinger is a dependency that can be probed for readiness.
type Pinger interface {
	// Ping reports whether the dependency is reachable.
	Ping(ctx context.Context) error
	// Name identifies the dependency in readiness responses.
	Name() string
}

// readyCheck is the result of probing one dependency.
type readyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// readyResponse is the JSON body for GET /api/ready.
type readyResponse struct {
	Status string       `json:"status"`
	Checks []readyCheck `json:"checks"`
}

// handleReady handles GET /api/ready. Every configured pinger is probed; the
// endpoint returns 503 when any probe fails so load balancers stop routing
// traffic to an instance with a broken dependency.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	resp := readyResponse{Status: "ready", Checks: make([]readyCheck, 0, len(s.pingers))}
	status := http.StatusOK

	for _, p := range s.pingers {
		check := readyCheck{Name: p.Name(), Status: "ok"}

		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := p.Ping(ctx)
		cancel()

		if err != nil {
			check.Status = "failed"
			check.Error = err.Error()
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			log.Warn("readiness probe failed",
				slog.String("dependency", p.Name()),
				slog.String("error", err.Error()),
			)
		}
		resp.Checks = append(resp.Checks, check)
	}

	writeJSON(w, status, resp)
}
