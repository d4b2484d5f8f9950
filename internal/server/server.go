package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/portx/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows the mux patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns patterns such as "GET /callback"
}

// Router registers handlers behind a middleware stack.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Server is a short-lived HTTP server bound to a listener before its handler is known,
// so a callback URL can be derived from the bound address (port 0 picks a free port).
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	logger     *log.Logger
	errs       chan error
}

// Listen binds addr without serving yet.
func Listen(addr string, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return &Server{
		listener: listener,
		logger:   logger,
		errs:     make(chan error, 1),
	}, nil
}

// Addr returns the bound host:port.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// URL returns the http URL of path on the bound address.
func (s *Server) URL(path string) string {
	return "http://" + s.Addr() + path
}

// Serve starts handling requests in the background. Serve errors are delivered on [Server.Errors].
func (s *Server) Serve(handler http.Handler) {
	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.Debug("serving", "addr", s.Addr())
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()
}

// Errors reports a failure of the serve loop.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Shutdown stops the server gracefully, or closes the listener if Serve was never called.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return s.listener.Close()
	}
	return s.httpServer.Shutdown(ctx)
}
