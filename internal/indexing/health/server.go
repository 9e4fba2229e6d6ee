// Package health exposes process health and metrics over HTTP.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ojukwu12/Nodepulse/internal/indexing/syncer"
)

// Status values reported by /health.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Source provides the sync loop snapshot.
type Source interface {
	Status() syncer.Status
}

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	source Source
	server *http.Server

	// staleTickThreshold marks the loop degraded when no tick has
	// completed for this long.
	staleTickThreshold time.Duration
}

// NewServer creates a new health server.
func NewServer(source Source, port int, tickInterval time.Duration) *Server {
	mux := http.NewServeMux()
	s := &Server{
		source: source,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		staleTickThreshold: 3 * tickInterval,
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.source.Status()

	status := StatusHealthy
	switch {
	case !st.Configured:
		status = StatusDegraded
	case st.LastTickError != "":
		status = StatusDegraded
	case st.LastTickAt != nil && time.Since(*st.LastTickAt) > s.staleTickThreshold:
		status = StatusDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.source.Status())
}
