package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"
)

// Server is the HTTP server for the decode service.
type Server struct {
	mux     *http.ServeMux
	handler *Handlers
	metrics *Metrics
	srv     *http.Server
}

// NewServer creates a new HTTP server. metrics may be nil to disable the
// /metrics endpoint.
func NewServer(addr string, handler *Handlers, metrics *Metrics) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		handler: handler,
		metrics: metrics,
	}
	s.setupRoutes()
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	// API routes
	s.mux.HandleFunc("/api/decode", s.handler.HandleDecode)
	s.mux.HandleFunc("/api/status", s.handler.HandleStatus)

	// WebSocket
	s.mux.HandleFunc("/ws", s.handler.HandleWebSocket)

	if s.metrics != nil {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}
}

// Handler returns the route multiplexer.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves on the configured address until ctx is done, then shuts down
// and returns once in-flight requests have finished or timeout expired.
func (s *Server) Run(ctx context.Context, timeout time.Duration) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln, timeout)
}

func (s *Server) serve(ctx context.Context, ln net.Listener, timeout time.Duration) error {
	log.Printf("[INFO] Starting server on %s", ln.Addr())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := s.Shutdown(shutdownCtx)
	if serveErr := <-errCh; serveErr != http.ErrServerClosed {
		return serveErr
	}
	return err
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
