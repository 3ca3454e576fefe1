// Package web exposes the operational HTTP endpoints: a health probe and
// Prometheus metrics.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/castellanbot/castellan/internal/database"
	"github.com/castellanbot/castellan/internal/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	probeTimeout      = 3 * time.Second
)

// Server wraps the HTTP server serving /healthz and /metrics.
type Server struct {
	log    *slog.Logger
	srv    *http.Server
	store  store.Store
	events database.EventStore
}

// NewServer builds the operational HTTP server. The health endpoint reports
// the state store and event database status without failing the probe when
// the store is down, since the bot keeps running degraded.
func NewServer(addr string, logger *slog.Logger, st store.Store, events database.EventStore) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		log:    logger.With("component", "web"),
		store:  st,
		events: events,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	s.log.Info("HTTP server stopped")
	return <-errCh
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Events string `json:"events,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Store: "ok"}

	if err := s.store.Healthy(ctx); err != nil {
		resp.Status = "degraded"
		resp.Store = err.Error()
	}
	if s.events != nil {
		resp.Events = "ok"
		if err := s.events.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Events = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("Failed to write health response", "error", err)
	}
}
