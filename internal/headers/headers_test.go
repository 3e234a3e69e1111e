package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderParse(t *testing.T) {
	// Valid single header
	h := NewHeaders()
	data := []byte("Host: localhost:42069\r\n")
	n, done, err := h.Parse(data)
	require.NoError(t, err)
	val, ok := h.Get("host")
	assert.True(t, ok)
	assert.Equal(t, "localhost:42069", val)
	assert.Equal(t, 23, n)
	assert.False(t, done)

	// Extra whitespace around the value
	h = NewHeaders()
	data = []byte("Host:   localhost:42069   \r\n")
	_, done, err = h.Parse(data)
	require.NoError(t, err)
	val, ok = h.Get("host")
	assert.True(t, ok)
	assert.Equal(t, "localhost:42069", val)
	assert.False(t, done)

	// Duplicate headers keep every value
	h = NewHeaders()
	data = []byte("Set-Cookie: a=1\r\nSet-Cookie: b=2\r\n")
	_, done, err = h.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a=1", "b=2"}, h.GetAll("set-cookie"))
	assert.False(t, done)

	val, ok = h.Get("set-cookie")
	assert.True(t, ok)
	assert.Equal(t, "a=1", val)

	// Empty line ends the header block
	h = NewHeaders()
	n, done, err = h.Parse([]byte("\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, done)

	h = NewHeaders()
	n, done, err = h.Parse([]byte("Host: example.com\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 21, n)
	assert.True(t, done)

	// Incomplete line consumes nothing
	h = NewHeaders()
	n, done, err = h.Parse([]byte("Host: example.com"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, done)
	assert.Len(t, h.GetAll("host"), 0)

	// Empty value is allowed
	h = NewHeaders()
	_, _, err = h.Parse([]byte("X-Empty:\r\n"))
	require.NoError(t, err)
	val, ok = h.Get("x-empty")
	assert.True(t, ok)
	assert.Equal(t, "", val)
}

func TestHeaderParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"whitespace before colon", "Host : localhost\r\n", "malformed"},
		{"whitespace in name", "Ho st: localhost\r\n", "malformed"},
		{"no colon", "InvalidHeader\r\n", "malformed"},
		{"empty name", ": value\r\n", "malformed"},
		{"invalid character", "H©st: localhost\r\n", "invalid character"},
		{"line folding", "Host: example.com\r\n continued\r\n", "line folding"},
		{"tab folding", "Host: example.com\r\n\tcontinued\r\n", "line folding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewHeaders().Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCaseInsensitiveLookup(t *testing.T) {
	h := NewHeaders()
	_, _, err := h.Parse([]byte("Content-Type: application/json\r\n"))
	require.NoError(t, err)

	val, ok := h.Get("content-type")
	assert.True(t, ok)
	assert.Equal(t, "application/json", val)

	val, ok = h.Get("CONTENT-TYPE")
	assert.True(t, ok)
	assert.Equal(t, "application/json", val)

	assert.Equal(t, []string{"Content-Type"}, h.Names())
}

func TestSetKeepsPosition(t *testing.T) {
	h := NewHeaders()
	h.Set("Content-Type", "text/plain")
	h.Set("date", "yesterday")
	h.Set("X-Custom", "1")

	h.Set("Date", "today")
	h.Set("Content-Length", "2")

	assert.Equal(t, []string{"Content-Type", "date", "X-Custom", "Content-Length"}, h.Names())
	val, _ := h.Get("DATE")
	assert.Equal(t, "today", val)
}

func TestAddSetDel(t *testing.T) {
	h := NewHeaders()
	h.Add("X-Custom", "value1")
	h.Add("x-custom", "value2")
	assert.Equal(t, []string{"value1", "value2"}, h.GetAll("X-CUSTOM"))

	h.Set("X-Custom", "new-value")
	assert.Equal(t, []string{"new-value"}, h.GetAll("x-custom"))

	h.Add("A", "1")
	h.Add("B", "2")
	h.Del("x-custom")
	assert.Equal(t, []string{"A", "B"}, h.Names())
	val, ok := h.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "2", val)

	h.Del("missing")
	assert.Equal(t, 2, h.Len())

	_, ok = h.Get("non-existent")
	assert.False(t, ok)
}

func TestAllOrder(t *testing.T) {
	h := NewHeaders()
	h.Add("B", "1")
	h.Add("A", "2")
	h.Add("B", "3")

	var got []string
	for k, v := range h.All() {
		got = append(got, k+"="+v)
	}
	assert.Equal(t, []string{"B=1", "B=3", "A=2"}, got)
}

func TestFromMapSorted(t *testing.T) {
	h := FromMap(map[string]string{
		"X-B":          "b",
		"Content-Type": "text/plain",
		"X-A":          "a",
	})
	assert.Equal(t, []string{"Content-Type", "X-A", "X-B"}, h.Names())
}

func TestClone(t *testing.T) {
	h := NewHeaders()
	h.Add("X-A", "1")

	c := h.Clone()
	c.Add("X-A", "2")
	c.Set("X-B", "3")

	assert.Equal(t, []string{"1"}, h.GetAll("x-a"))
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, []string{"1", "2"}, c.GetAll("x-a"))
}
