package terminal

import "time"

// PollInterval bounds how long a single Read waits before re-checking the stop channel
const PollInterval = 100 * time.Millisecond

// Backend abstracts platform-specific raw terminal operations.
type Backend interface {
	// Lifecycle
	Init() error
	Fini()

	// Capabilities
	Size() (width, height int)

	// I/O
	// Write writes raw bytes to the terminal output.
	Write(p []byte) error

	// Read blocks until input is available, the stop channel is closed, or an error occurs.
	// A nil slice with nil error means the poll interval elapsed without input.
	Read(stopCh <-chan struct{}) ([]byte, error)
}
