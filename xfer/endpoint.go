package xfer

import (
	"context"
	"net"
	"strconv"
)

// Endpoint is one resolved candidate address.
type Endpoint struct {
	Family string // "tcp4" or "tcp6"
	IP     net.IP
	Port   int
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.IP.String(), strconv.Itoa(e.Port))
}

// Resolver turns a host name into IP addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

func endpointFor(ip net.IP, port int) Endpoint {
	if ip4 := ip.To4(); ip4 != nil {
		return Endpoint{Family: "tcp4", IP: ip4, Port: port}
	}
	return Endpoint{Family: "tcp6", IP: ip, Port: port}
}

// ResolveEndpoints returns the connectable candidates for host, in the
// order the resolver produced them.
func ResolveEndpoints(ctx context.Context, r Resolver, host string, port int) ([]Endpoint, error) {
	if host == "" {
		return nil, newError(KindResolve, "resolve", ErrEmptyArgument)
	}
	if r == nil {
		r = net.DefaultResolver
	}

	if ip := net.ParseIP(host); ip != nil {
		return []Endpoint{endpointFor(ip, port)}, nil
	}

	addrs, err := r.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, newError(KindResolve, "resolve "+host, err)
	}
	if len(addrs) == 0 {
		return nil, newError(KindResolve, "resolve "+host, ErrNoEndpoints)
	}

	eps := make([]Endpoint, 0, len(addrs))
	for _, a := range addrs {
		eps = append(eps, endpointFor(a.IP, port))
	}
	return eps, nil
}

// PassiveEndpoints returns the bind candidates for host. An empty host
// means the IPv4 and IPv6 wildcard addresses, in that order.
func PassiveEndpoints(ctx context.Context, r Resolver, host string, port int) ([]Endpoint, error) {
	if host == "" {
		return []Endpoint{
			{Family: "tcp4", IP: net.IPv4zero.To4(), Port: port},
			{Family: "tcp6", IP: net.IPv6unspecified, Port: port},
		}, nil
	}
	return ResolveEndpoints(ctx, r, host, port)
}
