//go:build unix

package terminal

// newDefault selects the direct ANSI backend on unix
func newDefault(mode ColorMode) Terminal {
	return newRaw(newBackend(), mode)
}

func newRawStdio(mode ColorMode) (Terminal, error) {
	return newRaw(newBackend(), mode), nil
}
