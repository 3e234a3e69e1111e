package server

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// Endpoint is the address a Server listens on.
type Endpoint struct {
	Host string
	Port int
}

// DefaultEndpoint is used when no address is configured.
var DefaultEndpoint = Endpoint{Host: "0.0.0.0", Port: 8080}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// ParseEndpoint parses host:port. An empty host means all interfaces.
func ParseEndpoint(s string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("invalid port %q", portStr)
	}
	if host == "" {
		host = DefaultEndpoint.Host
	}
	return Endpoint{Host: host, Port: port}, nil
}

var lc net.ListenConfig

// listen binds a TCP listener on ep and raises its accept queue to backlog.
func listen(ctx context.Context, ep Endpoint, backlog int) (net.Listener, error) {
	l, err := lc.Listen(ctx, "tcp", ep.String())
	if err != nil {
		return nil, err
	}
	if backlog > 0 {
		if err := setBacklog(l, backlog); err != nil {
			l.Close()
			return nil, fmt.Errorf("setting backlog: %w", err)
		}
	}
	return l, nil
}
