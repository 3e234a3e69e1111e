package server

import (
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/ridge/parallel"
)

// IsTransportError reports whether err is an expected failure of the
// connection itself: the peer went away or the socket is no longer usable.
// Recovered panics are never transport errors.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	var panicErr parallel.ErrPanic
	if errors.As(err, &panicErr) {
		return false
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.EBADF)
}
