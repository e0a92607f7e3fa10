//go:build !unix

package xfer

import (
	"context"
	"net"
)

// bindEndpoint falls back to the net package where raw sockets are not
// available. The backlog is left to the operating system.
func bindEndpoint(ep Endpoint, _ int) (net.Listener, string, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), ep.Family, ep.String())
	if err != nil {
		return nil, "bind", err
	}
	return ln, "", nil
}
