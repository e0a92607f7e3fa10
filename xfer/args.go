package xfer

import (
	"errors"
	"strconv"
	"strings"
)

// ClientArgs are the positional arguments of the client binary.
type ClientArgs struct {
	Host string
	Path string
}

// ParseClientArgs reads `<hostname> <filepath>`.
func ParseClientArgs(args []string) (*ClientArgs, error) {
	if len(args) != 2 {
		return nil, newError(KindArgs, "usage: client hostname filename", errors.ErrUnsupported)
	}

	host := strings.TrimSpace(args[0])
	path := args[1]
	if host == "" || path == "" {
		return nil, newError(KindArgs, "usage: client hostname filename", ErrEmptyArgument)
	}

	return &ClientArgs{Host: host, Path: path}, nil
}

// ParseBufSize applies the server's buffer argument rule: the argument is
// used when it has fewer than six characters and parses as an integer
// greater than nine. Anything else yields DefaultBufSize.
func ParseBufSize(arg string) int {
	if arg == "" || len(arg) >= 6 {
		return DefaultBufSize
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < MinBufSize {
		return DefaultBufSize
	}
	return n
}
