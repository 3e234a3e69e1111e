package server

import "sync"

// Read buffer size classes.
const (
	smallBufferSize  = 4096
	mediumBufferSize = 32768
	largeBufferSize  = 131072
)

// bufferPool hands out reusable read buffers in three size classes.
type bufferPool struct {
	small  sync.Pool
	medium sync.Pool
	large  sync.Pool
}

func newPool(size int) sync.Pool {
	return sync.Pool{
		New: func() any {
			buf := make([]byte, size)
			return &buf
		},
	}
}

var readBuffers = &bufferPool{
	small:  newPool(smallBufferSize),
	medium: newPool(mediumBufferSize),
	large:  newPool(largeBufferSize),
}

// get returns a buffer of exactly size bytes.
func (p *bufferPool) get(size int) []byte {
	switch {
	case size <= smallBufferSize:
		return (*p.small.Get().(*[]byte))[:size]
	case size <= mediumBufferSize:
		return (*p.medium.Get().(*[]byte))[:size]
	case size <= largeBufferSize:
		return (*p.large.Get().(*[]byte))[:size]
	default:
		return make([]byte, size)
	}
}

// put returns a buffer obtained from get. Buffers of other capacities are
// left to the garbage collector.
func (p *bufferPool) put(buf []byte) {
	switch cap(buf) {
	case smallBufferSize:
		full := buf[:smallBufferSize]
		p.small.Put(&full)
	case mediumBufferSize:
		full := buf[:mediumBufferSize]
		p.medium.Put(&full)
	case largeBufferSize:
		full := buf[:largeBufferSize]
		p.large.Put(&full)
	}
}
