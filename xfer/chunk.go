package xfer

import (
	"errors"
	"io"
	"syscall"
)

// maxZeroWrites bounds how many times WriteAll tolerates a writer that
// accepts nothing and reports no error.
const maxZeroWrites = 100

// ChunkStream cuts a reader into fixed-size chunks. The slice returned by
// Next is reused by the following call.
type ChunkStream struct {
	r     io.Reader
	buf   []byte
	chunk uint64
}

func NewChunkStream(r io.Reader, size int) *ChunkStream {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &ChunkStream{
		r:   r,
		buf: make([]byte, size),
	}
}

// Next returns the next chunk, which is full-sized except possibly the
// last one. It returns io.EOF once the reader is exhausted.
func (c *ChunkStream) Next() ([]byte, error) {
	n, err := io.ReadFull(c.r, c.buf)
	switch {
	case err == nil, errors.Is(err, io.ErrUnexpectedEOF):
		c.chunk++
		return c.buf[:n], nil
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	default:
		return nil, err
	}
}

// Chunks reports how many chunks Next has produced.
func (c *ChunkStream) Chunks() uint64 {
	return c.chunk
}

// WriteAll writes p in full. A short write is not an error: the unsent
// suffix is written again until everything is accepted or the writer
// fails. Interrupted calls are retried.
func WriteAll(w io.Writer, p []byte) (int, error) {
	total, zero := 0, 0
	for total < len(p) {
		n, err := w.Write(p[total:])
		total += n
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			return total, err
		}
		if n == 0 {
			zero++
			if zero >= maxZeroWrites {
				return total, io.ErrNoProgress
			}
			continue
		}
		zero = 0
	}
	return total, nil
}

// Stream copies r to w chunk by chunk and stops at the first read or
// write failure.
func Stream(w io.Writer, r io.Reader, chunkSize int) (int64, error) {
	stream := NewChunkStream(r, chunkSize)

	var sent int64
	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return sent, nil
		}
		if err != nil {
			return sent, newError(KindIO, "read file", err)
		}

		n, err := WriteAll(w, chunk)
		sent += int64(n)
		if err != nil {
			return sent, newError(KindIO, "send", err)
		}
	}
}
