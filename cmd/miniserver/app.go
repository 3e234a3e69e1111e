package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Brownie44l1/miniserver/internal/request"
	"github.com/Brownie44l1/miniserver/internal/response"
	"github.com/Brownie44l1/miniserver/internal/router"
	"github.com/Brownie44l1/miniserver/internal/server"
)

func newApp() server.App {
	r := router.New()
	r.GET("/", handleHome)
	r.GET("/env", handleEnv)
	r.GET("/status/:code", handleStatus)

	return server.Wrap(r,
		server.LoggingMiddleware(),
		server.HeadersMiddleware(map[string]string{
			"Server": server.Name + "/" + server.Version,
		}),
	)
}

func handleHome(ctx context.Context, env request.Env) (response.Response, error) {
	return response.Text(response.StatusOK, fmt.Sprintf("%s v%s\n", server.Name, server.Version)), nil
}

// handleEnv echoes the request environment, one KEY=value per line.
func handleEnv(ctx context.Context, env request.Env) (response.Response, error) {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, env[k])
	}
	return response.Text(response.StatusOK, b.String()), nil
}

// handleStatus responds with the status named in the path.
func handleStatus(ctx context.Context, env request.Env) (response.Response, error) {
	code, err := response.ParseStatus(env.Get(router.ParamPrefix + "CODE"))
	if err != nil {
		return response.Text(response.StatusBadRequest, err.Error()+"\n"), nil
	}
	if code == response.StatusNotModified || code == response.StatusNoContent {
		return response.Response{Status: code}, nil
	}
	text := response.StatusText(code)
	if text == "" {
		text = "Status " + env.Get(router.ParamPrefix+"CODE")
	}
	return response.Text(code, text+"\n"), nil
}
