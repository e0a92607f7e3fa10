package xfer

import (
	"context"
	"io"
	"net"
	"os"

	"github.com/sirupsen/logrus"
)

// Dialer opens one connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Connector sends one file over one TCP connection.
type Connector struct {
	Resolver  Resolver
	Dialer    Dialer
	Port      int
	ChunkSize int
	// Open returns the byte source for a path. Defaults to os.Open.
	Open func(path string) (io.ReadCloser, error)
}

func NewConnector(port int) *Connector {
	return &Connector{
		Resolver:  net.DefaultResolver,
		Dialer:    &net.Dialer{},
		Port:      port,
		ChunkSize: DefaultChunkSize,
		Open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// Connect dials the resolved candidates for host in order and returns
// the first connection that succeeds. Failed candidates are skipped.
func (c *Connector) Connect(ctx context.Context, host string) (net.Conn, Endpoint, error) {
	eps, err := ResolveEndpoints(ctx, c.Resolver, host, c.Port)
	if err != nil {
		return nil, Endpoint{}, err
	}

	var d Dialer = &net.Dialer{}
	if c.Dialer != nil {
		d = c.Dialer
	}

	for _, ep := range eps {
		conn, err := d.DialContext(ctx, ep.Family, ep.String())
		if err != nil {
			incr("connector_candidate_failed")
			logrus.WithFields(logrus.Fields{
				"function": "Connect",
				"endpoint": ep.String(),
				"error":    err.Error(),
			}).Warn("Candidate failed, trying next")
			continue
		}
		return conn, ep, nil
	}
	return nil, Endpoint{}, newError(KindConnect, "connect", ErrFailedToConnect)
}

// Send connects to host and streams the file at path, closing the
// connection on every path. It returns the number of bytes sent.
func (c *Connector) Send(ctx context.Context, host, path string) (int64, error) {
	if host == "" || path == "" {
		return 0, newError(KindArgs, "send", ErrEmptyArgument)
	}
	InitMetrics()

	conn, ep, err := c.Connect(ctx, host)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	logrus.WithFields(logrus.Fields{
		"function": "Send",
		"endpoint": ep.IP.String(),
	}).Info("Connecting")

	f, err := c.open(path)
	if err != nil {
		return 0, newError(KindFile, "could not open "+path, err)
	}
	defer f.Close()

	n, err := Stream(conn, f, c.ChunkSize)
	markBytes("connector_bytes_sent", n)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Send",
			"path":     path,
			"sent":     n,
			"error":    err.Error(),
		}).Error("Transfer aborted")
		return n, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Send",
		"path":     path,
		"sent":     n,
	}).Debug("Transfer complete")
	return n, nil
}

func (c *Connector) open(path string) (io.ReadCloser, error) {
	if c.Open == nil {
		return os.Open(path)
	}
	return c.Open(path)
}
