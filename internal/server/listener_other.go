//go:build !unix

package server

import "net"

// setBacklog keeps the runtime's queue length on platforms without listen(2).
func setBacklog(net.Listener, int) error {
	return nil
}

func setNoDelay(conn net.Conn) error {
	if tc, ok := conn.(*net.TCPConn); ok {
		return tc.SetNoDelay(true)
	}
	return nil
}
