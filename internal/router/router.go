// Package router dispatches request environments to apps by method and path.
package router

import (
	"context"
	"slices"
	"strings"

	"github.com/Brownie44l1/miniserver/internal/request"
	"github.com/Brownie44l1/miniserver/internal/response"
	"github.com/Brownie44l1/miniserver/internal/server"
)

// ParamPrefix prefixes the environment key of each path parameter:
// "/users/:id" exposes ROUTE_PARAM_ID.
const ParamPrefix = "ROUTE_PARAM_"

// Route represents a single route
type Route struct {
	Method string
	Path   string
	App    server.App
	Params []string // Parameter names (e.g., ["id", "name"])
}

// Router is a server.App that hands each request to the first matching route
type Router struct {
	routes []*Route
}

// New creates a new router
func New() *Router {
	return &Router{}
}

// Handle registers a new route
func (r *Router) Handle(method, path string, app server.App) {
	r.routes = append(r.routes, &Route{
		Method: method,
		Path:   path,
		App:    app,
		Params: extractParams(path),
	})
}

// HandleFunc registers a function as a route
func (r *Router) HandleFunc(method, path string, fn server.AppFunc) {
	r.Handle(method, path, fn)
}

// GET is a shortcut for HandleFunc("GET", ...)
func (r *Router) GET(path string, fn server.AppFunc) {
	r.HandleFunc("GET", path, fn)
}

// POST is a shortcut for HandleFunc("POST", ...)
func (r *Router) POST(path string, fn server.AppFunc) {
	r.HandleFunc("POST", path, fn)
}

// PUT is a shortcut for HandleFunc("PUT", ...)
func (r *Router) PUT(path string, fn server.AppFunc) {
	r.HandleFunc("PUT", path, fn)
}

// DELETE is a shortcut for HandleFunc("DELETE", ...)
func (r *Router) DELETE(path string, fn server.AppFunc) {
	r.HandleFunc("DELETE", path, fn)
}

// PATCH is a shortcut for HandleFunc("PATCH", ...)
func (r *Router) PATCH(path string, fn server.AppFunc) {
	r.HandleFunc("PATCH", path, fn)
}

// Match finds a route that matches the given method and path. allowed lists
// the methods of routes matching the path when none matches the method.
func (r *Router) Match(method, path string) (route *Route, params map[string]string, allowed []string) {
	if p, _, ok := strings.Cut(path, "?"); ok {
		path = p
	}

	for _, rt := range r.routes {
		params := matchPath(rt.Path, path)
		if params == nil {
			continue
		}
		if rt.Method == method {
			return rt, params, nil
		}
		if !slices.Contains(allowed, rt.Method) {
			allowed = append(allowed, rt.Method)
		}
	}
	return nil, nil, allowed
}

// Call implements server.App
func (r *Router) Call(ctx context.Context, env request.Env) (response.Response, error) {
	route, params, allowed := r.Match(env.Get(request.KeyRequestMethod), env.Get(request.KeyPathInfo))
	if route == nil {
		if len(allowed) > 0 {
			resp := response.Text(response.StatusMethodNotAllowed, "Method Not Allowed")
			resp.Header.Set("Allow", strings.Join(allowed, ", "))
			return resp, nil
		}
		return response.Text(response.StatusNotFound, "Not Found"), nil
	}

	if len(params) > 0 {
		extra := make(request.Env, len(params))
		for name, value := range params {
			extra[ParamPrefix+strings.ToUpper(name)] = value
		}
		env = env.With(extra)
	}
	return route.App.Call(ctx, env)
}

// extractParams extracts parameter names from a path pattern
// Example: "/users/:id/posts/:postId" -> ["id", "postId"]
func extractParams(path string) []string {
	var params []string
	for _, part := range strings.Split(path, "/") {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			params = append(params, name)
		}
	}
	return params
}

// matchPath checks if a request path matches a route pattern
// Returns parameter values if match, nil otherwise
func matchPath(pattern, path string) map[string]string {
	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")

	// Must have same number of parts
	if len(patternParts) != len(pathParts) {
		return nil
	}

	params := make(map[string]string)
	for i, patternPart := range patternParts {
		if name, ok := strings.CutPrefix(patternPart, ":"); ok {
			if pathParts[i] == "" {
				return nil
			}
			params[name] = pathParts[i]
		} else if patternPart != pathParts[i] {
			// Static parts must match exactly
			return nil
		}
	}
	return params
}
