package server

import (
	"context"
	"maps"
	"runtime/debug"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Brownie44l1/miniserver/internal/headers"
	"github.com/Brownie44l1/miniserver/internal/request"
	"github.com/Brownie44l1/miniserver/internal/response"
	"github.com/Brownie44l1/miniserver/internal/tlog"
)

// LoggingMiddleware logs before and after each call. Request and response
// bodies are not logged.
func LoggingMiddleware() Middleware {
	return func(next App) App {
		return AppFunc(func(ctx context.Context, env request.Env) (response.Response, error) {
			started := time.Now()
			ctx = tlog.With(ctx,
				zap.String("method", env.Get(request.KeyRequestMethod)),
				zap.String("uri", env.Get(request.KeyRequestURI)),
			)
			logger := tlog.Get(ctx)
			logger.Debug("Request handling started")

			resp, err := next.Call(ctx, env)
			if err != nil {
				logger.Debug("Request handling failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
				return resp, err
			}
			logger.Info("Request handled", zap.Int("status", resp.Status), zap.Duration("elapsed", time.Since(started)))
			return resp, nil
		})
	}
}

// RecoveryMiddleware turns a panicking call into a 500 response. Without it a
// panic drops the connection without a response.
func RecoveryMiddleware() Middleware {
	return func(next App) App {
		return AppFunc(func(ctx context.Context, env request.Env) (resp response.Response, err error) {
			defer func() {
				if p := recover(); p != nil {
					tlog.Get(ctx).Error("Panic recovered",
						zap.Any("panic", p),
						zap.ByteString("stack", debug.Stack()),
						zap.String("uri", env.Get(request.KeyRequestURI)),
					)
					resp, err = response.Text(response.StatusInternalServerError, "Internal Server Error"), nil
				}
			}()
			return next.Call(ctx, env)
		})
	}
}

// HeadersMiddleware adds the given headers to responses that do not already
// carry them.
func HeadersMiddleware(h map[string]string) Middleware {
	return func(next App) App {
		return AppFunc(func(ctx context.Context, env request.Env) (response.Response, error) {
			resp, err := next.Call(ctx, env)
			if err != nil {
				return resp, err
			}
			if resp.Header == nil {
				resp.Header = headers.NewHeaders()
			} else {
				resp.Header = resp.Header.Clone()
			}
			for _, name := range sortedKeys(h) {
				if _, ok := resp.Header.Get(name); !ok {
					resp.Header.Set(name, h[name])
				}
			}
			return resp, nil
		})
	}
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
