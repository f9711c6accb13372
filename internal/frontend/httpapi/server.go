package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout bounds how long Stop waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// Server runs an http.Handler as a lifecycle service.
type Server struct {
	addr    string
	handler http.Handler
	logger  *zap.Logger

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	cancel context.CancelFunc
	// stopped makes a Start that races a Stop return without serving.
	stopped bool
}

// NewServer creates a Server listening on addr.
//
// Precondition: addr is a "host:port" string; handler must be non-nil.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{addr: addr, handler: handler, logger: logger}
}

// Start listens and serves until Stop is called.
//
// Postcondition: Returns nil after a clean Stop, or the listen/serve error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	// Request contexts derive from base so Stop can end open event streams.
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		cancel()
		return ln.Close()
	}
	s.srv = srv
	s.ln = ln
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Info("http api listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address once Start is listening, or the configured address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	s.mu.Lock()
	s.stopped = true
	srv, cancelStreams := s.srv, s.cancel
	s.mu.Unlock()
	if srv == nil {
		return
	}
	cancelStreams()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown", zap.Error(err))
	}
}
