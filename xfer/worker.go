package xfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/sirupsen/logrus"
)

const (
	receivedBanner  = "server: received...\n\n"
	receivedTrailer = "\n\n"
)

// Worker owns one accepted connection. It shares nothing with the
// listener or other workers except the admission semaphore and the output
// writer, which it only touches while holding the token.
type Worker struct {
	conn    net.Conn
	id      uint64
	bufSize int
	sem     *Semaphore
	out     io.Writer
}

func NewWorker(c net.Conn, id uint64, bufSize int, sem *Semaphore, out io.Writer) *Worker {
	return &Worker{
		conn:    c,
		id:      id,
		bufSize: bufSize,
		sem:     sem,
		out:     out,
	}
}

// Run waits for the admission token, copies everything the peer sends to
// the output until the peer closes, releases the token and closes the
// connection. It returns the byte count and a non-nil error when the read
// side failed.
func (w *Worker) Run(ctx context.Context) (n int64, err error) {
	defer w.conn.Close()

	err = w.sem.Do(ctx, func() error {
		var derr error
		n, derr = w.drain()
		return derr
	})

	fields := logrus.Fields{
		"function": "Run",
		"worker":   w.id,
		"remote":   w.conn.RemoteAddr().String(),
		"bytes":    n,
	}
	if err != nil {
		fields["error"] = err.Error()
		logrus.WithFields(fields).Warn("Worker failed")
		return n, err
	}
	logrus.WithFields(fields).Debug("Worker finished")
	return n, nil
}

// drain runs inside the critical section.
func (w *Worker) drain() (total int64, err error) {
	buf, err := allocBuffer(w.bufSize)
	if err != nil {
		return 0, err
	}

	if _, err := io.WriteString(w.out, receivedBanner); err != nil {
		return 0, newError(KindIO, "write output", err)
	}

	for {
		n, rerr := w.conn.Read(buf)
		if n > 0 {
			total += int64(n)
			if _, werr := w.out.Write(buf[:n]); werr != nil {
				err = newError(KindIO, "write output", werr)
				break
			}
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				err = newError(KindIO, "recv", rerr)
			}
			break
		}
	}

	if _, werr := io.WriteString(w.out, receivedTrailer); werr != nil && err == nil {
		err = newError(KindIO, "write output", werr)
	}
	return total, err
}

// allocBuffer turns an allocation panic into an error so that only the
// one worker fails.
func allocBuffer(size int) (buf []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			buf = nil
			err = newError(KindResource, "alloc buffer", fmt.Errorf("%v", p))
		}
	}()
	if size <= 0 {
		return nil, newError(KindResource, "alloc buffer", fmt.Errorf("invalid size %d", size))
	}
	return make([]byte, size), nil
}
