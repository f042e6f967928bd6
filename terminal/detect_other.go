//go:build !unix

package terminal

import "errors"

// ErrRawUnsupported is returned for the raw backend where termios does not exist
var ErrRawUnsupported = errors.New("raw terminal backend requires a unix platform")

// newDefault selects tcell where termios does not exist
func newDefault(mode ColorMode) Terminal {
	return NewTcell(mode)
}

func newRawStdio(ColorMode) (Terminal, error) {
	return nil, ErrRawUnsupported
}

// resetTerminalMode is a no-op without termios; tcell restores its own console state
func resetTerminalMode() {}
