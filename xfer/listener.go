package xfer

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrFailedToBind = errors.New("failed to bind")

const maxAcceptDelay = time.Second

// Listener accepts connections and hands each one to its own worker.
type Listener struct {
	cfg    Config
	ln     net.Listener
	sem    *Semaphore
	reaper *Reaper
	failed atomic.Uint64
}

// Stats is a snapshot of the listener's worker bookkeeping.
type Stats struct {
	Live     int
	Unreaped int
	Reaped   uint64
	Failed   uint64
}

// NewListener creates the admission semaphore and binds the first
// candidate address for cfg.Host that accepts a socket and a bind.
func NewListener(ctx context.Context, cfg Config) (*Listener, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	InitMetrics()

	sem, err := NewAdmissionSemaphore()
	if err != nil {
		return nil, newError(KindResource, "semaphore", err)
	}
	logrus.WithFields(logrus.Fields{
		"function":  "NewListener",
		"semaphore": sem.Name(),
	}).Info("Using admission semaphore")
	// Workers get the handle directly; nothing needs the name any more.
	sem.Unlink()

	eps, err := PassiveEndpoints(ctx, net.DefaultResolver, cfg.Host, cfg.Port)
	if err != nil {
		return nil, err
	}

	ln, err := bindFirst(eps, cfg.Backlog)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"function": "NewListener",
		"address":  ln.Addr().String(),
		"backlog":  cfg.Backlog,
		"buffer":   cfg.BufSize,
	}).Info("Listening")

	l := &Listener{cfg: cfg, ln: ln, sem: sem}
	l.reaper = NewReaper(l.reaped)
	return l, nil
}

func bindFirst(eps []Endpoint, backlog int) (net.Listener, error) {
	for _, ep := range eps {
		ln, step, err := bindEndpoint(ep, backlog)
		if err == nil {
			return ln, nil
		}
		if step == "listen" {
			return nil, newError(KindIO, "listen "+ep.String(), err)
		}
		logrus.WithFields(logrus.Fields{
			"function": "bindFirst",
			"endpoint": ep.String(),
			"step":     step,
			"error":    err.Error(),
		}).Warn("Skipping bind candidate")
	}
	return nil, newError(KindConnect, "bind", ErrFailedToBind)
}

func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

func (l *Listener) SemaphoreName() string {
	return l.sem.Name()
}

func (l *Listener) Stats() Stats {
	return Stats{
		Live:     l.reaper.Live(),
		Unreaped: l.reaper.Unreaped(),
		Reaped:   l.reaper.Reaped(),
		Failed:   l.failed.Load(),
	}
}

// Close stops accepting. In-flight workers are left to finish.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Serve accepts until ctx is cancelled or the listener is closed, then
// waits for every in-flight worker to finish and be reaped.
func (l *Listener) Serve(ctx context.Context) error {
	reapCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()

	var g errgroup.Group
	g.Go(func() error {
		return l.reaper.Run(reapCtx)
	})
	g.Go(func() error {
		defer stopReaper()
		err := l.acceptLoop(ctx)
		l.reaper.Wait()
		return err
	})
	return g.Wait()
}

func (l *Listener) acceptLoop(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { l.ln.Close() })
	defer stop()
	defer l.ln.Close()

	logrus.WithFields(logrus.Fields{
		"function": "acceptLoop",
		"address":  l.ln.Addr().String(),
	}).Info("Waiting for connections")

	var delay time.Duration
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			incr("listener_accept_error")
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			logrus.WithFields(logrus.Fields{
				"function": "acceptLoop",
				"error":    err.Error(),
				"retry_in": delay.String(),
			}).Warn("Accept failed")
			time.Sleep(delay)
			continue
		}
		delay = 0

		incr("listener_accept")
		l.spawn(conn)
	}
}

func (l *Listener) spawn(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	id := l.reaper.Spawn(remote, func(rec *Record) {
		w := NewWorker(conn, rec.ID, l.cfg.BufSize, l.sem, l.cfg.Output)
		rec.Bytes, rec.Err = w.Run(context.Background())
	})
	logrus.WithFields(logrus.Fields{
		"function": "spawn",
		"remote":   remote,
		"worker":   id,
	}).Info("Got connection")
}

func (l *Listener) reaped(rec Record) {
	markBytes("worker_bytes", rec.Bytes)
	if rec.Err != nil {
		l.failed.Add(1)
		incrSuffix("worker_failed", KindOf(rec.Err).String())
		return
	}
	incr("worker_done")
}
