package server

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Server wraps the HTTP listener with sane timeouts and graceful shutdown.
type Server struct {
	http *http.Server
}

// NewServer returns a Server listening on addr with the given handler.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start blocks serving requests until the listener closes.
func (s *Server) Start() error {
	log.Printf("http server listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
