package headers

import (
	"bytes"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
)

type field struct {
	name   string
	values []string
}

// Headers is a case-insensitive header collection that remembers the order in
// which names were first added. Iteration yields names with the spelling of
// their first insertion.
type Headers struct {
	fields []field
	index  map[string]int // lowercased name -> position in fields
}

func NewHeaders() *Headers {
	return &Headers{
		index: make(map[string]int),
	}
}

// FromMap builds Headers from a plain map. Go maps have no order, so names are
// added in sorted order to keep the wire output stable.
func FromMap(m map[string]string) *Headers {
	h := NewHeaders()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		h.Set(k, m[k])
	}
	return h
}

// Get returns the first value for a header
func (h *Headers) Get(key string) (string, bool) {
	values := h.GetAll(key)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// GetAll returns all values for a header
func (h *Headers) GetAll(key string) []string {
	i, ok := h.index[strings.ToLower(key)]
	if !ok {
		return nil
	}
	return h.fields[i].values
}

// Set replaces all values for a header. An existing header keeps its position.
func (h *Headers) Set(key, value string) {
	lower := strings.ToLower(key)
	if i, ok := h.index[lower]; ok {
		h.fields[i].values = []string{value}
		return
	}
	h.index[lower] = len(h.fields)
	h.fields = append(h.fields, field{name: key, values: []string{value}})
}

// Add appends a value to a header
func (h *Headers) Add(key, value string) {
	lower := strings.ToLower(key)
	if i, ok := h.index[lower]; ok {
		h.fields[i].values = append(h.fields[i].values, value)
		return
	}
	h.index[lower] = len(h.fields)
	h.fields = append(h.fields, field{name: key, values: []string{value}})
}

// Del removes a header
func (h *Headers) Del(key string) {
	lower := strings.ToLower(key)
	i, ok := h.index[lower]
	if !ok {
		return
	}
	h.fields = slices.Delete(h.fields, i, i+1)
	delete(h.index, lower)
	for j := i; j < len(h.fields); j++ {
		h.index[strings.ToLower(h.fields[j].name)] = j
	}
}

// Clone returns a deep copy of h.
func (h *Headers) Clone() *Headers {
	c := &Headers{
		fields: make([]field, len(h.fields)),
		index:  maps.Clone(h.index),
	}
	for i, f := range h.fields {
		c.fields[i] = field{name: f.name, values: slices.Clone(f.values)}
	}
	return c
}

// Len returns the number of distinct header names.
func (h *Headers) Len() int {
	return len(h.fields)
}

// Names returns header names in insertion order.
func (h *Headers) Names() []string {
	names := make([]string, 0, len(h.fields))
	for _, f := range h.fields {
		names = append(names, f.name)
	}
	return names
}

// All yields every name/value pair in insertion order. A header with several
// values is yielded once per value.
func (h *Headers) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, f := range h.fields {
			for _, v := range f.values {
				if !yield(f.name, v) {
					return
				}
			}
		}
	}
}

// Parse parses header lines from raw bytes. It returns the number of bytes
// consumed and whether the blank line ending the header block was seen.
func (h *Headers) Parse(data []byte) (int, bool, error) {
	read := 0
	done := false

	for {
		idx := bytes.Index(data[read:], []byte("\r\n"))
		if idx == -1 {
			break
		}

		if idx == 0 {
			done = true
			read += 2
			break
		}

		line := data[read : read+idx]

		if line[0] == ' ' || line[0] == '\t' {
			return read, false, fmt.Errorf("obsolete line folding not supported")
		}

		name, value, err := parseHeader(line)
		if err != nil {
			return read, done, err
		}

		h.Add(name, value)

		read += idx + 2
	}

	return read, done, nil
}

func parseHeader(line []byte) (string, string, error) {
	colonIdx := bytes.IndexByte(line, ':')
	if colonIdx == -1 {
		return "", "", fmt.Errorf("malformed header: no colon")
	}

	name := line[:colonIdx]
	value := line[colonIdx+1:]

	if len(name) == 0 {
		return "", "", fmt.Errorf("malformed header: empty name")
	}

	if bytes.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("malformed header: whitespace in name")
	}

	for _, b := range name {
		if !isTokenChar(b) {
			return "", "", fmt.Errorf("invalid character in header name: %c", b)
		}
	}

	return string(name), string(bytes.TrimSpace(value)), nil
}

// isTokenChar reports whether b is a tchar (RFC 9110 section 5.6.2).
func isTokenChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z') ||
		(b >= '0' && b <= '9') ||
		b == '!' || b == '#' || b == '$' || b == '%' || b == '&' ||
		b == '\'' || b == '*' || b == '+' || b == '-' || b == '.' ||
		b == '^' || b == '_' || b == '`' || b == '|' || b == '~'
}
