// Package server exposes a calculator session over HTTP.
//
// Routes:
//
//	GET  /state            current value, cursor and log length
//	GET  /history          the command log
//	POST /compute          {"op":"+","operand":5}
//	POST /undo?levels=N    undo N steps (default 1)
//	POST /redo?levels=N    redo N steps (default 1)
//	POST /clear            drop the command log
//	GET  /metrics          Prometheus exposition
//	GET  /health           liveness
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dshills/undocalc/internal/app"
)

// Server serves one Application.
type Server struct {
	app    *app.Application
	logger *zap.Logger
	http   *http.Server
}

// New creates a server for a listening on addr.
func New(a *app.Application, addr string) *Server {
	s := &Server{
		app:    a,
		logger: a.Logger().Named("http"),
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.app.Metrics().Registry(), promhttp.HandlerOpts{}))

	r.Get("/state", s.handleState)
	r.Get("/history", s.handleHistory)
	r.Post("/compute", s.handleCompute)
	r.Post("/undo", s.handleStep("undo"))
	r.Post("/redo", s.handleStep("redo"))
	r.Post("/clear", s.handleClear)

	return r
}

// Start listens and serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}
