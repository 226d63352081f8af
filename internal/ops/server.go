// Package ops serves the operations endpoints on a listener separate from
// the user-facing server: health, prometheus metrics and optional pprof.
package ops

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dataportal/internal"
	"dataportal/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionCounter reports how many sessions are live
type SessionCounter interface {
	Len() int
}

type Config struct {
	Addr     string
	Profiler bool
}

type Server struct {
	cfg      Config
	sessions SessionCounter
	logger   *internal.Logger
	httpSrv  *http.Server
}

func New(cfg Config, sessions SessionCounter, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{cfg: cfg, sessions: sessions, logger: logger}
	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second, // pprof profiles run for 30s
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler builds the ops router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	if s.cfg.Profiler {
		r.Mount("/debug", middleware.Profiler())
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	sessions := 0
	if s.sessions != nil {
		sessions = s.sessions.Len()
	}
	fmt.Fprintf(w, "ok sessions=%d\n", sessions)
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	serveErrCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErrCh <- fmt.Errorf("failed to listen and serve ops: %w", err)
		}
	}()

	s.logger.Info("[Ops] listening on %s (pprof %v)", s.cfg.Addr, s.cfg.Profiler)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown ops server: %w", err)
		}
		return nil
	case err := <-serveErrCh:
		return err
	}
}
