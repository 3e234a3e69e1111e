// Package request turns raw request bytes into a Request and a CGI-style
// environment. The Parser is fed incrementally, the way bytes arrive from a
// socket.
package request

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Brownie44l1/miniserver/internal/headers"
)

// Request is a fully parsed HTTP request.
type Request struct {
	Method   string
	Target   string // request-target exactly as sent
	Path     string
	RawQuery string
	Version  string
	Headers  *headers.Headers
	Body     []byte
}

func newRequest() *Request {
	return &Request{Headers: headers.NewHeaders()}
}

func (r *Request) setTarget(target string) {
	r.Target = target
	path := target
	if u, err := url.Parse(target); err == nil && u.IsAbs() {
		path = u.RequestURI()
	}
	if p, q, ok := strings.Cut(path, "?"); ok {
		r.Path, r.RawQuery = p, q
	} else {
		r.Path = path
	}
}

// ContentLength returns the declared body length, or -1 if there is none.
func (r *Request) ContentLength() int64 {
	cl, ok := r.Headers.Get("content-length")
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// IsChunked reports whether the request declares chunked transfer coding.
func (r *Request) IsChunked() bool {
	for _, te := range r.Headers.GetAll("transfer-encoding") {
		if strings.Contains(strings.ToLower(te), "chunked") {
			return true
		}
	}
	return false
}

// Host returns the Host header, falling back to the authority of an
// absolute-form target.
func (r *Request) Host() string {
	if host, ok := r.Headers.Get("host"); ok {
		return host
	}
	if u, err := url.Parse(r.Target); err == nil && u.IsAbs() {
		return u.Host
	}
	return ""
}
