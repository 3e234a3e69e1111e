package response

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/miniserver/internal/headers"
)

var fixedTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("CET", 3600))

const fixedDate = "Sat, 09 Mar 2024 13:05:07 GMT"

func fixedClock() time.Time { return fixedTime }

func TestWriteSimpleResponse(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithClock(fixedClock))

	err := w.Write(New(200, map[string]string{"Content-Type": "text/plain"}, String("hi")))
	require.NoError(t, err)

	expected := "HTTP/1.1 200 200\r\n" +
		"Connection: close\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: 2\r\n" +
		"Date: " + fixedDate + "\r\n" +
		"\r\n" +
		"hi"
	assert.Equal(t, expected, buf.String())
	assert.Equal(t, int64(len(expected)), w.Written())
	assert.Equal(t, 200, w.StatusCode())
	assert.False(t, w.HadError())
}

func TestWriteNotModifiedHasNoContentLength(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithClock(fixedClock))

	h := headers.NewHeaders()
	h.Set("Content-Length", "99")
	h.Set("ETag", `"abc"`)
	require.NoError(t, w.Write(Response{Status: 304, Header: h, Body: String("ignored length")}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 304 304\r\nConnection: close\r\n"))
	assert.Contains(t, out, "Date: "+fixedDate+"\r\n")
	assert.NotContains(t, strings.ToLower(out), "content-length")
	assert.Contains(t, out, "ETag: \"abc\"\r\n")
}

func TestWriteNotModifiedEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Write(Response{Status: 304}))
	assert.NotContains(t, strings.ToLower(buf.String()), "content-length")
	assert.True(t, strings.HasSuffix(buf.String(), "\r\n\r\n"))
}

func TestDateOverridesCallerValue(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithClock(fixedClock))

	h := headers.NewHeaders()
	h.Set("date", "yesterday")
	require.NoError(t, w.Write(Response{Status: 200, Header: h}))

	assert.Contains(t, buf.String(), "date: "+fixedDate+"\r\n")
	assert.NotContains(t, buf.String(), "yesterday")
	v, _ := h.Get("Date")
	assert.Equal(t, "yesterday", v, "caller headers are not modified")
}

func TestContentLengthMatchesBody(t *testing.T) {
	bodies := [][]string{
		nil,
		{""},
		{"a"},
		{"hello", ", ", "world"},
		{strings.Repeat("x", 10000), "ü"},
	}
	for _, chunks := range bodies {
		var buf bytes.Buffer
		require.NoError(t, NewWriter(&buf).Write(Response{Status: 200, Body: String(chunks...)}))

		head, body, ok := strings.Cut(buf.String(), "\r\n\r\n")
		require.True(t, ok)
		assert.Equal(t, strings.Join(chunks, ""), body)
		assert.Contains(t, head, "Content-Length: "+strconv.Itoa(len(body)))
	}
}

func TestReasonPhrases(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, WithReasonPhrases()).Write(Text(404, "nope")))
	assert.True(t, strings.HasPrefix(buf.String(), "HTTP/1.1 404 Not Found\r\n"))

	buf.Reset()
	require.NoError(t, NewWriter(&buf, WithReasonPhrases()).Write(Text(599, "?")))
	assert.True(t, strings.HasPrefix(buf.String(), "HTTP/1.1 599 599\r\n"))
}

func TestBodyErrorWritesNothing(t *testing.T) {
	boom := errors.New("boom")
	body := Body(func(yield func([]byte, error) bool) {
		if !yield([]byte("partial"), nil) {
			return
		}
		yield(nil, boom)
	})

	var buf bytes.Buffer
	err := NewWriter(&buf).Write(Response{Status: 200, Body: body})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, buf.Len())
}

func TestInvalidStatus(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorIs(t, NewWriter(&buf).Write(Response{Status: 42}), ErrInvalidStatus)
	assert.Zero(t, buf.Len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriteFailure(t *testing.T) {
	w := NewWriter(failingWriter{})
	require.Error(t, w.Write(Text(200, "x")))
	assert.True(t, w.HadError())
}

func TestStateOrder(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.Error(t, w.WriteHeaders(headers.NewHeaders()))
	require.Error(t, w.WriteBody(nil))
	require.NoError(t, w.WriteStatusLine(200))
	require.Error(t, w.WriteStatusLine(200))
	require.NoError(t, w.WriteHeaders(headers.NewHeaders()))
	require.NoError(t, w.WriteBody([]byte("ok")))

	assert.Equal(t, "HTTP/1.1 200 200\r\nConnection: close\r\n\r\nok", buf.String())
}
