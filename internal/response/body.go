package response

import (
	"bytes"
	"errors"
	"io"
)

// Body produces a response body as a sequence of chunks. It is single-pass:
// ranging over it a second time is not guaranteed to yield the same bytes.
// A non-nil error ends the body.
type Body func(yield func([]byte, error) bool)

const readChunkSize = 4096

// Bytes returns a body yielding each chunk in order.
func Bytes(chunks ...[]byte) Body {
	return func(yield func([]byte, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

// String returns a body yielding each string as a chunk.
func String(chunks ...string) Body {
	return func(yield func([]byte, error) bool) {
		for _, c := range chunks {
			if !yield([]byte(c), nil) {
				return
			}
		}
	}
}

// Reader returns a body that reads r to EOF.
func Reader(r io.Reader) Body {
	return func(yield func([]byte, error) bool) {
		buf := make([]byte, readChunkSize)
		for {
			n, err := r.Read(buf)
			if n > 0 && !yield(bytes.Clone(buf[:n]), nil) {
				return
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// ReadAll drains b into memory. A nil body is empty.
func ReadAll(b Body) ([]byte, error) {
	if b == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	for chunk, err := range b {
		if err != nil {
			return nil, err
		}
		buf.Write(chunk)
	}
	return buf.Bytes(), nil
}
