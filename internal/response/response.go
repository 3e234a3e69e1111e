// Package response holds what an application returns for a request and
// serializes it onto the wire.
package response

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Brownie44l1/miniserver/internal/headers"
)

var ErrInvalidStatus = errors.New("invalid status code")

// Response is the result of dispatching one request.
type Response struct {
	Status int
	Header *headers.Headers
	Body   Body
}

// New builds a Response from a plain header map. Map keys are written in
// sorted order.
func New(status int, h map[string]string, body Body) Response {
	return Response{
		Status: status,
		Header: headers.FromMap(h),
		Body:   body,
	}
}

// Text is a text/plain response.
func Text(status int, text string) Response {
	return New(status, map[string]string{"Content-Type": "text/plain"}, String(text))
}

// ParseStatus converts a status given as text, e.g. "404" or "404 Not Found".
func ParseStatus(s string) (int, error) {
	s = strings.TrimSpace(s)
	if code, _, ok := strings.Cut(s, " "); ok {
		s = code
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	if err := validStatus(n); err != nil {
		return 0, err
	}
	return n, nil
}

func validStatus(code int) error {
	if code < 100 || code > 999 {
		return fmt.Errorf("%w: %d", ErrInvalidStatus, code)
	}
	return nil
}
