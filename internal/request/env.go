package request

import (
	"maps"
	"net"
	"strings"
)

// Environment keys produced by the parser.
const (
	KeyRequestMethod = "REQUEST_METHOD"
	KeyRequestURI    = "REQUEST_URI"
	KeyScriptName    = "SCRIPT_NAME"
	KeyPathInfo      = "PATH_INFO"
	KeyQueryString   = "QUERY_STRING"
	KeyHTTPVersion   = "HTTP_VERSION"
	KeyServerName    = "SERVER_NAME"
	KeyServerPort    = "SERVER_PORT"
	KeyContentType   = "CONTENT_TYPE"
	KeyContentLength = "CONTENT_LENGTH"
	KeyRequestBody   = "REQUEST_BODY"
)

// Transport keys merged in by the server once a request is complete.
const (
	KeyRemoteAddr       = "REMOTE_ADDR"
	KeyServerSoftware   = "SERVER_SOFTWARE"
	KeyGatewayInterface = "GATEWAY_INTERFACE"
	KeyServerProtocol   = "SERVER_PROTOCOL"
)

// Env is the CGI-style description of a request handed to applications.
// Header fields appear as HTTP_<NAME>, with Content-Type and Content-Length
// under their CGI names.
type Env map[string]string

// NewEnv builds the environment of a parsed request.
func NewEnv(r *Request) Env {
	env := Env{
		KeyRequestMethod: r.Method,
		KeyRequestURI:    r.Target,
		KeyScriptName:    "",
		KeyPathInfo:      r.Path,
		KeyQueryString:   r.RawQuery,
		KeyHTTPVersion:   r.Version,
	}

	if host := r.Host(); host != "" {
		name, port, err := net.SplitHostPort(host)
		if err != nil {
			name, port = host, "80"
		}
		env[KeyServerName] = name
		env[KeyServerPort] = port
	}

	for _, name := range r.Headers.Names() {
		value := strings.Join(r.Headers.GetAll(name), ", ")
		switch key := headerKey(name); key {
		case "HTTP_CONTENT_TYPE":
			env[KeyContentType] = value
		case "HTTP_CONTENT_LENGTH":
			env[KeyContentLength] = value
		default:
			env[key] = value
		}
	}

	if len(r.Body) > 0 {
		env[KeyRequestBody] = string(r.Body)
	}
	return env
}

func headerKey(name string) string {
	return "HTTP_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Get returns the value for key, or "" if it is absent.
func (e Env) Get(key string) string {
	return e[key]
}

// Header looks up a request header by its HTTP name.
func (e Env) Header(name string) (string, bool) {
	key := headerKey(name)
	switch key {
	case "HTTP_CONTENT_TYPE":
		key = KeyContentType
	case "HTTP_CONTENT_LENGTH":
		key = KeyContentLength
	}
	v, ok := e[key]
	return v, ok
}

// Clone returns a copy that can be modified without touching e.
func (e Env) Clone() Env {
	return maps.Clone(e)
}

// With returns a copy of e with the entries of extra merged in; extra wins on
// conflicts.
func (e Env) With(extra Env) Env {
	out := make(Env, len(e)+len(extra))
	maps.Copy(out, e)
	maps.Copy(out, extra)
	return out
}
