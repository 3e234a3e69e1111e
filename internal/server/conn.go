package server

import (
	"context"
	"net"
	"runtime/debug"
	"time"

	"github.com/ridge/parallel"
	"go.uber.org/zap"

	"github.com/Brownie44l1/miniserver/internal/response"
	"github.com/Brownie44l1/miniserver/internal/tlog"
)

// serveConn handles the single request on conn and closes it. Nothing that
// goes wrong here escapes to the caller.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	started := time.Now()
	ctx = tlog.With(ctx, zap.String("remoteAddr", conn.RemoteAddr().String()))
	logger := tlog.Get(ctx)

	s.metrics.connOpened()
	s.setState(conn, StateAccepted)
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Debug("Close failed", zap.Error(err))
		}
		s.setState(conn, StateClosed)
		s.metrics.connClosed()
	}()

	err := runTask(ctx, func(ctx context.Context) error {
		return s.handle(ctx, conn, started)
	})
	switch {
	case err == nil:
	case IsTransportError(err):
		s.metrics.SocketErrors.Add(1)
		logger.Warn("Socket error", zap.Error(err))
	default:
		s.metrics.InternalErrors.Add(1)
		logger.Error("Internal error", zap.String("error", err.Error()))
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn, started time.Time) error {
	s.setState(conn, StateTranslating)
	env, err := s.translate(conn)
	if err != nil {
		return err
	}

	s.setState(conn, StateDispatching)
	resp, err := s.app.Call(ctx, env)
	if err != nil {
		return err
	}

	s.setState(conn, StateResponding)
	w := response.NewWriter(conn, s.writerOptions()...)
	if err := w.Write(resp); err != nil {
		return err
	}
	s.metrics.RecordResponse(resp.Status, w.Written(), time.Since(started))
	return nil
}

func (s *Server) writerOptions() []response.Option {
	var opts []response.Option
	if s.cfg.Clock != nil {
		opts = append(opts, response.WithClock(s.cfg.Clock))
	}
	if s.cfg.ReasonPhrases {
		opts = append(opts, response.WithReasonPhrases())
	}
	return opts
}

func (s *Server) setState(conn net.Conn, state ConnState) {
	if s.cfg.ConnState != nil {
		s.cfg.ConnState(conn, state)
	}
}

// runTask executes the task in the current goroutine, recovering from panics.
// A panic is returned as ErrPanic.
func runTask(ctx context.Context, task parallel.Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = parallel.ErrPanic{Value: p, Stack: debug.Stack()}
		}
	}()
	return task(ctx)
}
