package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", DefaultEndpoint.String())
	assert.Equal(t, "[::1]:80", Endpoint{Host: "::1", Port: 80}.String())

	ep, err := ParseEndpoint("localhost:9000")
	require.NoError(t, err)
	assert.Equal(t, Endpoint{Host: "localhost", Port: 9000}, ep)

	ep, err = ParseEndpoint(":81")
	require.NoError(t, err)
	assert.Equal(t, Endpoint{Host: "0.0.0.0", Port: 81}, ep)

	_, err = ParseEndpoint("localhost")
	require.Error(t, err)
	_, err = ParseEndpoint("localhost:http")
	require.Error(t, err)
	_, err = ParseEndpoint("localhost:70000")
	require.Error(t, err)
}

func TestConnStateString(t *testing.T) {
	assert.Equal(t, "translating", StateTranslating.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "unknown", ConnState(42).String())
}

func TestBufferPool(t *testing.T) {
	for _, size := range []int{1, 4096, 5000, 32768, 100000, 200000} {
		buf := readBuffers.get(size)
		assert.Len(t, buf, size)
		readBuffers.put(buf)
	}
	buf := readBuffers.get(10)
	assert.Equal(t, smallBufferSize, cap(buf))
}
