package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Brownie44l1/miniserver/internal/request"
	"github.com/Brownie44l1/miniserver/internal/response"
	"github.com/Brownie44l1/miniserver/internal/tlog"
)

var testEnv = request.Env{
	request.KeyRequestMethod: "GET",
	request.KeyRequestURI:    "/x?y=1",
	request.KeyPathInfo:      "/x",
}

func TestWrapOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next App) App {
			return AppFunc(func(ctx context.Context, env request.Env) (response.Response, error) {
				order = append(order, name)
				return next.Call(ctx, env)
			})
		}
	}

	app := Wrap(hiApp, mark("first"), mark("second"))
	_, err := app.Call(context.Background(), testEnv)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestLoggingMiddleware(t *testing.T) {
	ctx, logs := tlog.Observed(context.Background())

	resp, err := Wrap(hiApp, LoggingMiddleware()).Call(ctx, testEnv)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)

	entries := logs.FilterMessage("Request handled").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/x?y=1", fields["uri"])
	assert.EqualValues(t, 200, fields["status"])
	assert.Equal(t, 1, logs.FilterMessage("Request handling started").Len())

	boom := errors.New("boom")
	failing := AppFunc(func(ctx context.Context, env request.Env) (response.Response, error) {
		return response.Response{}, boom
	})
	_, err = Wrap(failing, LoggingMiddleware()).Call(ctx, testEnv)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, logs.FilterMessage("Request handling failed").Len())
}

func TestRecoveryMiddleware(t *testing.T) {
	ctx, logs := tlog.Observed(context.Background())
	panicking := AppFunc(func(ctx context.Context, env request.Env) (response.Response, error) {
		panic("oops")
	})

	resp, err := Wrap(panicking, RecoveryMiddleware()).Call(ctx, testEnv)
	require.NoError(t, err)
	assert.Equal(t, response.StatusInternalServerError, resp.Status)

	entries := logs.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestHeadersMiddleware(t *testing.T) {
	orig := response.New(200, map[string]string{"Server": "custom"}, nil)
	app := AppFunc(func(ctx context.Context, env request.Env) (response.Response, error) {
		return orig, nil
	})

	resp, err := Wrap(app, HeadersMiddleware(map[string]string{
		"Server":        "MiniServer/0.1",
		"Cache-Control": "no-store",
	})).Call(context.Background(), testEnv)
	require.NoError(t, err)

	server, _ := resp.Header.Get("Server")
	assert.Equal(t, "custom", server)
	cc, _ := resp.Header.Get("cache-control")
	assert.Equal(t, "no-store", cc)
	assert.Equal(t, 1, orig.Header.Len(), "original headers untouched")

	resp, err = Wrap(AppFunc(func(ctx context.Context, env request.Env) (response.Response, error) {
		return response.Response{Status: 204}, nil
	}), HeadersMiddleware(map[string]string{"X-A": "1"})).Call(context.Background(), testEnv)
	require.NoError(t, err)
	assert.Equal(t, []string{"X-A"}, resp.Header.Names())
}
