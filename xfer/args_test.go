package xfer

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBufSize(t *testing.T) {
	tests := []struct {
		arg  string
		want int
	}{
		{"", DefaultBufSize},
		{"9", DefaultBufSize},
		{"10", 10},
		{"512", 512},
		{"99999", 99999},
		{"100000", DefaultBufSize},
		{"-500", DefaultBufSize},
		{"abc", DefaultBufSize},
		{"12k", DefaultBufSize},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.arg), func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBufSize(tt.arg))
		})
	}
}

func TestParseClientArgs(t *testing.T) {
	args, err := ParseClientArgs([]string{"localhost", "notes.txt"})
	require.NoError(t, err)
	assert.Equal(t, &ClientArgs{Host: "localhost", Path: "notes.txt"}, args)

	for _, bad := range [][]string{
		nil,
		{"localhost"},
		{"localhost", "a", "b"},
		{" ", "notes.txt"},
		{"localhost", ""},
	} {
		_, err := ParseClientArgs(bad)
		require.Error(t, err, "%v", bad)
		assert.Equal(t, KindArgs, KindOf(err))
		assert.Equal(t, 1, ExitCode(err))
	}
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
	assert.Equal(t, 2, ExitCode(newError(KindConnect, "connect", ErrFailedToConnect)))
	for _, k := range []Kind{KindArgs, KindResolve, KindFile, KindIO, KindResource} {
		assert.Equal(t, 1, ExitCode(newError(k, "op", nil)), k.String())
	}

	wrapped := fmt.Errorf("outer: %w", newError(KindConnect, "connect", ErrFailedToConnect))
	assert.Equal(t, 2, ExitCode(wrapped))
	assert.ErrorIs(t, wrapped, ErrFailedToConnect)
	assert.Equal(t, "outer: connect: failed to connect", wrapped.Error())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	mutate := map[string]func(*Config){
		"small buffer": func(c *Config) { c.BufSize = MinBufSize - 1 },
		"large buffer": func(c *Config) { c.BufSize = MaxBufSize + 1 },
		"bad port":     func(c *Config) { c.Port = 70000 },
		"no backlog":   func(c *Config) { c.Backlog = 0 },
		"no output":    func(c *Config) { c.Output = nil },
	}
	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Output = &bytes.Buffer{}
			fn(&cfg)
			assert.Equal(t, KindArgs, KindOf(cfg.Validate()))
		})
	}
}
