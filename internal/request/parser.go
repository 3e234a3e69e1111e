package request

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Grammar limits. These bound the request line and header block only; bodies
// are read up to their declared Content-Length.
const (
	maxRequestLineSize = 8192
	maxHeaderBytes     = 1 << 20
	maxHeaderLines     = 1000
)

var (
	ErrRequestLineTooLarge = errors.New("request line too large")
	ErrHeaderTooLarge      = errors.New("headers too large")
	ErrTooManyHeaders      = errors.New("too many header lines")
	ErrInvalidLength       = errors.New("invalid content-length")
	ErrChunkedNotSupported = errors.New("chunked request bodies are not supported")
	ErrParserFailed        = errors.New("parser is in error state")
)

type parserState int

const (
	stateRequestLine parserState = iota
	stateHeaders
	stateBody
	stateDone
	stateError
)

// Parser accumulates request bytes and parses them as they arrive.
//
// Feed may be called any number of times until Finished reports true. Bytes
// following a complete request are ignored: there is one request per
// connection.
type Parser struct {
	state       parserState
	buffer      []byte
	req         *Request
	headerBytes int
	headerLines int
	bodyLen     int64
}

func NewParser() *Parser {
	return &Parser{
		state:  stateRequestLine,
		buffer: make([]byte, 0, 4096),
		req:    newRequest(),
	}
}

// Feed hands the next chunk of raw bytes to the parser. A malformed request
// yields an error and the parser refuses any further input.
func (p *Parser) Feed(data []byte) error {
	switch p.state {
	case stateError:
		return ErrParserFailed
	case stateDone:
		return nil
	}

	p.buffer = append(p.buffer, data...)

	for p.state != stateDone {
		consumed, err := p.parse(p.buffer)
		if err != nil {
			p.state = stateError
			return err
		}
		if consumed == 0 {
			break
		}
		p.buffer = p.buffer[consumed:]
	}

	if p.state == stateRequestLine && len(p.buffer) > maxRequestLineSize {
		p.state = stateError
		return ErrRequestLineTooLarge
	}
	if p.state == stateHeaders && p.headerBytes+len(p.buffer) > maxHeaderBytes {
		p.state = stateError
		return ErrHeaderTooLarge
	}
	return nil
}

// Finished reports whether a complete request has been parsed.
func (p *Parser) Finished() bool {
	return p.state == stateDone
}

// Request returns the parsed request, or nil until Finished is true.
func (p *Parser) Request() *Request {
	if !p.Finished() {
		return nil
	}
	return p.req
}

// Env returns the CGI environment of the parsed request, or nil until
// Finished is true.
func (p *Parser) Env() Env {
	if !p.Finished() {
		return nil
	}
	return NewEnv(p.req)
}

func (p *Parser) parse(data []byte) (int, error) {
	switch p.state {
	case stateRequestLine:
		return p.parseRequestLine(data)
	case stateHeaders:
		return p.parseHeaders(data)
	case stateBody:
		return p.parseBody(data)
	case stateDone:
		return 0, nil
	default:
		return 0, fmt.Errorf("invalid parser state: %d", p.state)
	}
}

func (p *Parser) parseRequestLine(data []byte) (int, error) {
	method, target, version, consumed, err := parseRequestLine(data)
	if err != nil {
		return 0, err
	}
	if consumed == 0 {
		return 0, nil
	}
	if consumed > maxRequestLineSize {
		return 0, ErrRequestLineTooLarge
	}

	p.req.Method = method
	p.req.Version = version
	p.req.setTarget(target)

	p.state = stateHeaders
	return consumed, nil
}

func (p *Parser) parseHeaders(data []byte) (int, error) {
	before := p.req.Headers.Len()
	consumed, done, err := p.req.Headers.Parse(data)
	if err != nil {
		return 0, err
	}

	p.headerBytes += consumed
	if p.headerBytes > maxHeaderBytes {
		return 0, ErrHeaderTooLarge
	}
	p.headerLines += p.req.Headers.Len() - before
	if p.headerLines > maxHeaderLines {
		return 0, ErrTooManyHeaders
	}

	if !done {
		return consumed, nil
	}

	if p.req.IsChunked() {
		return 0, ErrChunkedNotSupported
	}

	if cl, ok := p.req.Headers.Get("content-length"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLength, cl)
		}
		if n > 0 {
			p.bodyLen = n
			p.req.Body = make([]byte, 0, min(n, 1<<16))
			p.state = stateBody
			return consumed, nil
		}
	}

	p.state = stateDone
	return consumed, nil
}

func (p *Parser) parseBody(data []byte) (int, error) {
	remaining := p.bodyLen - int64(len(p.req.Body))
	toRead := min(remaining, int64(len(data)))

	p.req.Body = append(p.req.Body, data[:toRead]...)
	if int64(len(p.req.Body)) == p.bodyLen {
		p.state = stateDone
	}
	return int(toRead), nil
}
