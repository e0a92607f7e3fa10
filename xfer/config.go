package xfer

import (
	"fmt"
	"io"
	"os"
)

const (
	DefaultPort      = 28785
	DefaultBufSize   = 4096
	MinBufSize       = 10
	MaxBufSize       = 99999
	DefaultBacklog   = 10
	DefaultChunkSize = 1000
)

// Config is built once when the listener starts and handed to every
// worker it spawns. Workers never read it after creation.
type Config struct {
	// Host to bind; empty means every local address.
	Host    string
	Port    int
	BufSize int
	Backlog int
	// Output receives every worker's bytes, one connection at a time.
	Output io.Writer
}

func DefaultConfig() Config {
	return Config{
		Port:    DefaultPort,
		BufSize: DefaultBufSize,
		Backlog: DefaultBacklog,
		Output:  os.Stdout,
	}
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return newError(KindArgs, "config", fmt.Errorf("port %d out of range", c.Port))
	}
	if c.BufSize < MinBufSize || c.BufSize > MaxBufSize {
		return newError(KindArgs, "config", fmt.Errorf("buffer size %d outside %d..%d", c.BufSize, MinBufSize, MaxBufSize))
	}
	if c.Backlog <= 0 {
		return newError(KindArgs, "config", fmt.Errorf("backlog %d must be positive", c.Backlog))
	}
	if c.Output == nil {
		return newError(KindArgs, "config", fmt.Errorf("nil output"))
	}
	return nil
}
