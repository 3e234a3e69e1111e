package response

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Brownie44l1/miniserver/internal/headers"
)

// writerState tracks what's been written so far
type writerState int

const (
	stateStart writerState = iota
	stateStatusWritten
	stateHeadersWritten
	stateBodyWritten
)

// Option configures a Writer.
type Option func(*Writer)

// WithClock sets the time source used for the Date header.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// WithReasonPhrases writes textual reason phrases ("200 OK") in the status
// line instead of repeating the numeric status.
func WithReasonPhrases() Option {
	return func(w *Writer) {
		w.reasonPhrases = true
	}
}

// Writer writes a single HTTP response to an io.Writer. The connection is
// always announced as closing.
type Writer struct {
	w             *bufio.Writer
	state         writerState
	statusCode    int
	now           func() time.Time
	reasonPhrases bool
	written       int64
	hadError      bool
}

// NewWriter creates a new response writer
func NewWriter(w io.Writer, opts ...Option) *Writer {
	rw := &Writer{
		w:     bufio.NewWriter(w),
		state: stateStart,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(rw)
	}
	return rw
}

// Write serializes resp. The body is drained before anything is written, so a
// failing body leaves the connection untouched. resp.Header is not modified.
func (w *Writer) Write(resp Response) error {
	if err := validStatus(resp.Status); err != nil {
		return err
	}

	body, err := ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	h := headers.NewHeaders()
	if resp.Header != nil {
		h = resp.Header.Clone()
	}
	if resp.Status == StatusNotModified {
		h.Del("Content-Length")
	} else {
		h.Set("Content-Length", strconv.Itoa(len(body)))
	}
	h.Set("Date", w.now().UTC().Format(http.TimeFormat))

	if err := w.WriteStatusLine(resp.Status); err != nil {
		return err
	}
	if err := w.WriteHeaders(h); err != nil {
		return err
	}
	return w.WriteBody(body)
}

// WriteStatusLine writes the status line and the Connection header.
func (w *Writer) WriteStatusLine(code int) error {
	if w.state != stateStart {
		return fmt.Errorf("status line already written")
	}

	reason := strconv.Itoa(code)
	if w.reasonPhrases {
		if text := StatusText(code); text != "" {
			reason = text
		}
	}

	if err := w.write(fmt.Sprintf("HTTP/1.1 %d %s\r\nConnection: close\r\n", code, reason)); err != nil {
		return err
	}

	w.statusCode = code
	w.state = stateStatusWritten
	return nil
}

// WriteHeaders writes all headers in insertion order followed by the blank
// line.
func (w *Writer) WriteHeaders(h *headers.Headers) error {
	if w.state != stateStatusWritten {
		return fmt.Errorf("must write status line before headers")
	}

	for key, value := range h.All() {
		if err := w.write(key + ": " + value + "\r\n"); err != nil {
			return err
		}
	}

	if err := w.write("\r\n"); err != nil {
		return err
	}

	w.state = stateHeadersWritten
	return nil
}

// WriteBody writes the complete response body and flushes.
func (w *Writer) WriteBody(data []byte) error {
	if w.state != stateHeadersWritten {
		return fmt.Errorf("must write headers before body")
	}

	n, err := w.w.Write(data)
	w.written += int64(n)
	if err == nil {
		err = w.w.Flush()
	}
	if err != nil {
		w.hadError = true
		return err
	}

	w.state = stateBodyWritten
	return nil
}

func (w *Writer) write(s string) error {
	n, err := w.w.WriteString(s)
	w.written += int64(n)
	if err != nil {
		w.hadError = true
	}
	return err
}

func (w *Writer) HadError() bool {
	return w.hadError
}

func (w *Writer) StatusCode() int {
	return w.statusCode
}

// Written returns the number of response bytes written so far.
func (w *Writer) Written() int64 {
	return w.written
}
