// Package server accepts TCP connections, reads one request from each,
// dispatches it to an App and writes the response before closing the
// connection.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/ridge/parallel"
	"go.uber.org/zap"

	"github.com/Brownie44l1/miniserver/internal/tlog"
)

// Software identification reported in SERVER_SOFTWARE and the banner.
const (
	Name    = "MiniServer"
	Version = "0.1"
)

const (
	DefaultBacklog        = 1024
	DefaultReadBufferSize = 4096

	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Config configures a Server
type Config struct {
	Endpoint Endpoint

	// Backlog is the length of the accept queue requested from the kernel.
	Backlog int

	// ReadBufferSize is the size of each read from a connection.
	ReadBufferSize int

	// ReasonPhrases writes "200 OK" instead of "200 200" in status lines.
	ReasonPhrases bool

	// Clock is the time source for Date headers. Defaults to time.Now.
	Clock func() time.Time

	// ConnState, if set, is called on every connection state change.
	ConnState func(net.Conn, ConnState)
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		Endpoint:       DefaultEndpoint,
		Backlog:        DefaultBacklog,
		ReadBufferSize: DefaultReadBufferSize,
	}
}

// Server serves an App over TCP, one request per connection
type Server struct {
	cfg      Config
	app      App
	listener net.Listener
	metrics  Metrics
}

// New creates a Server. Zero Backlog and ReadBufferSize take their defaults.
func New(cfg Config, app App) *Server {
	if cfg.Backlog <= 0 {
		cfg.Backlog = DefaultBacklog
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = DefaultReadBufferSize
	}
	return &Server{
		cfg: cfg,
		app: app,
	}
}

// Listen binds the listening socket. Failing to bind is fatal for the
// server: Run cannot be called afterwards.
func (s *Server) Listen(ctx context.Context) error {
	if s.listener != nil {
		return errors.New("server is already listening")
	}
	l, err := listen(ctx, s.cfg.Endpoint, s.cfg.Backlog)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Endpoint, err)
	}
	s.listener = l
	return nil
}

// Addr returns the address the server is bound to, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stats returns a snapshot of the server's counters
func (s *Server) Stats() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// Banner prints the startup banner
func (s *Server) Banner(w io.Writer) {
	addr := s.cfg.Endpoint.String()
	if a := s.Addr(); a != nil {
		addr = a.String()
	}
	fmt.Fprintf(w, ">> %s v%s\n", Name, Version)
	fmt.Fprintf(w, ">> Listening on %s, CTRL+C to stop\n", addr)
}

// Run accepts connections until the context is closed, then closes the
// listener and returns the context's error. Connections already being
// handled are neither waited for nor interrupted.
//
// Run calls Listen if it has not been called yet.
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(ctx); err != nil {
			return err
		}
	}

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		ctx = tlog.With(ctx, zap.Stringer("listenAddr", s.listener.Addr()))
		logger := tlog.Get(ctx)

		spawn("listener", parallel.Fail, func(ctx context.Context) error {
			logger.Info("Accepting connections")
			return s.accept(ctx)
		})

		spawn("closer", parallel.Fail, func(ctx context.Context) error {
			<-ctx.Done()
			logger.Info("Shutting down")
			if err := s.listener.Close(); err != nil {
				logger.Debug("Closing listener failed", zap.Error(err))
			}
			return ctx.Err()
		})

		return nil
	})
}

func (s *Server) accept(ctx context.Context) error {
	logger := tlog.Get(ctx)
	// Handlers outlive the accept loop.
	connCtx := context.WithoutCancel(ctx)

	backoff := time.Duration(0)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(2*backoff, maxAcceptBackoff)
			}
			logger.Debug("Accept failed, retrying", zap.Error(err), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0

		if err := setNoDelay(conn); err != nil {
			logger.Debug("Setting TCP_NODELAY failed", zap.Error(err))
		}
		go s.serveConn(connCtx, conn)
	}
}
