// Package miniserver is a minimal HTTP/1.1 server. Each connection carries a
// single request, which is handed to an App as a CGI-style environment; the
// App's response is written back and the connection is closed.
//
//	app := miniserver.AppFunc(func(ctx context.Context, env miniserver.Env) (miniserver.Response, error) {
//	    return miniserver.Text(200, "hello"), nil
//	})
//	err := miniserver.Run(ctx, miniserver.DefaultConfig(), app)
package miniserver

import (
	"context"
	"io"

	"github.com/Brownie44l1/miniserver/internal/request"
	"github.com/Brownie44l1/miniserver/internal/response"
	"github.com/Brownie44l1/miniserver/internal/server"
)

type (
	Env        = request.Env
	Response   = response.Response
	Body       = response.Body
	App        = server.App
	AppFunc    = server.AppFunc
	Middleware = server.Middleware
	Config     = server.Config
	Endpoint   = server.Endpoint
	ConnState  = server.ConnState
	Server     = server.Server
)

// DefaultConfig listens on 0.0.0.0:8080 with a backlog of 1024.
func DefaultConfig() Config {
	return server.DefaultConfig()
}

// New creates a Server. Nothing is bound until Listen or Run.
func New(cfg Config, app App) *Server {
	return server.New(cfg, app)
}

// Run binds cfg.Endpoint, writes the startup banner to banner (if not nil)
// and serves app until ctx is closed. A bind failure is returned at once.
func Run(ctx context.Context, cfg Config, app App, banner io.Writer) error {
	srv := server.New(cfg, app)
	if err := srv.Listen(ctx); err != nil {
		return err
	}
	if banner != nil {
		srv.Banner(banner)
	}
	return srv.Run(ctx)
}

// Wrap installs middleware on app; the first listed sees the request first.
func Wrap(app App, mw ...Middleware) App {
	return server.Wrap(app, mw...)
}

// Text is a text/plain response.
func Text(status int, text string) Response {
	return response.Text(status, text)
}

// NewResponse builds a response from a header map and a body.
func NewResponse(status int, headers map[string]string, body Body) Response {
	return response.New(status, headers, body)
}
