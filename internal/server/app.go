package server

import (
	"context"

	"github.com/Brownie44l1/miniserver/internal/request"
	"github.com/Brownie44l1/miniserver/internal/response"
)

// App is the application a Server dispatches requests to. It may be called
// concurrently from many connections.
//
// The context carries the connection's logger. It is not cancelled when the
// server shuts down.
type App interface {
	Call(ctx context.Context, env request.Env) (response.Response, error)
}

// AppFunc adapts a function to App.
type AppFunc func(ctx context.Context, env request.Env) (response.Response, error)

// Call implements App
func (f AppFunc) Call(ctx context.Context, env request.Env) (response.Response, error) {
	return f(ctx, env)
}

// Middleware wraps an App.
type Middleware func(App) App

// Wrap installs a number of middleware on an App. The first middleware listed
// will be the first one to see the request.
func Wrap(app App, mw ...Middleware) App {
	for i := len(mw) - 1; i >= 0; i-- {
		app = mw[i](app)
	}
	return app
}
