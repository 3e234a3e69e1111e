package server

import (
	"net"

	"github.com/Brownie44l1/miniserver/internal/request"
)

// Values of the transport fields added to every request environment.
const (
	GatewayInterface = "CGI/1.2"
	ServerProtocol   = "HTTP/1.1"
)

// translate reads conn until the parser holds a complete request and returns
// its environment. A read error or EOF before that is returned as is.
func (s *Server) translate(conn net.Conn) (request.Env, error) {
	buf := readBuffers.get(s.cfg.ReadBufferSize)
	defer readBuffers.put(buf)

	p := request.NewParser()
	for !p.Finished() {
		n, err := conn.Read(buf)
		if n > 0 {
			if err := p.Feed(buf[:n]); err != nil {
				return nil, err
			}
		}
		if err != nil && !p.Finished() {
			return nil, err
		}
	}

	return p.Env().With(transportEnv(conn.RemoteAddr())), nil
}

func transportEnv(remote net.Addr) request.Env {
	return request.Env{
		request.KeyRemoteAddr:       remoteHost(remote),
		request.KeyServerSoftware:   Name,
		request.KeyGatewayInterface: GatewayInterface,
		request.KeyServerProtocol:   ServerProtocol,
	}
}

// remoteHost returns the address of the peer without its port.
func remoteHost(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
