// Package httpd runs an http.Server until its context is canceled.
package httpd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 10 * time.Second
)

type Server struct {
	addr            string
	handler         http.Handler
	logger          *zap.Logger
	ShutdownTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
	done     chan struct{}
	err      error
}

func New(addr string, h http.Handler) *Server {
	return &Server{
		addr:            addr,
		handler:         h,
		logger:          zap.NewNop(),
		ShutdownTimeout: DefaultShutdownTimeout,
		done:            make(chan struct{}),
	}
}

func (s *Server) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// Addr returns the address the server listens on, which is only known
// after Start when the configured port is zero.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start listens on the server address and serves requests in the
// background until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ErrorLog:          zap.NewStdLog(s.logger),
	}
	s.mu.Lock()
	s.listener, s.srv = ln, srv
	s.mu.Unlock()
	s.logger.Info("Listening", zap.Stringer("addr", ln.Addr()))
	go s.serve(ln)
	go func() {
		<-ctx.Done()
		s.shutdown()
	}()
	return nil
}

func (s *Server) serve(ln net.Listener) {
	err := s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	close(s.done)
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down")
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("Graceful shutdown failed", zap.Error(err))
		s.srv.Close()
	}
}

// Wait blocks until the server has stopped and returns the error that
// stopped it, if any.
func (s *Server) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
