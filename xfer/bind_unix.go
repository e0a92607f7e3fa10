//go:build unix

package xfer

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// bindEndpoint creates, configures, binds and listens on a socket for ep.
// The returned step names the call that failed so the caller can tell a
// bad candidate from a failure to listen.
func bindEndpoint(ep Endpoint, backlog int) (net.Listener, string, error) {
	var (
		domain int
		sa     unix.Sockaddr
	)
	switch ep.Family {
	case "tcp4":
		sa4 := &unix.SockaddrInet4{Port: ep.Port}
		copy(sa4.Addr[:], ep.IP.To4())
		domain, sa = unix.AF_INET, sa4
	case "tcp6":
		sa6 := &unix.SockaddrInet6{Port: ep.Port}
		copy(sa6.Addr[:], ep.IP.To16())
		domain, sa = unix.AF_INET6, sa6
	default:
		return nil, "socket", fmt.Errorf("unknown family %q", ep.Family)
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, "socket", err
	}
	unix.CloseOnExec(fd)

	// lets a restarted server bind while old connections sit in TIME_WAIT
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, "setsockopt", err
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, "bind", err
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, "listen", err
	}

	f := os.NewFile(uintptr(fd), "xfer-listener")
	defer f.Close()

	// FileListener dups the descriptor, so f can be closed once it returns.
	ln, err := net.FileListener(f)
	if err != nil {
		return nil, "listen", err
	}
	return ln, "", nil
}
