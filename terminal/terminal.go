package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Terminal is what a full-frame text game needs from the host: scoped raw mode,
// a non-blocking key reader and a frame sink
type Terminal interface {
	// Init enters raw mode, alternate screen buffer, hides cursor, starts the key reader
	Init() error

	// Fini restores terminal state. Safe to call multiple times, Init may follow
	Fini()

	// Size returns current terminal dimensions
	Size() (width, height int)

	// ColorMode returns the color capability frames may use
	ColorMode() ColorMode

	// Draw replaces the visible screen with frame, lines separated by '\n'
	Draw(frame string) error

	// Events returns the key event channel of the current Init cycle
	Events() <-chan Event
}

// Backend names accepted by Open
const (
	BackendAuto  = "auto"
	BackendRaw   = "raw"
	BackendTcell = "tcell"
)

// New returns the platform default terminal
func New(mode ColorMode) Terminal {
	return newDefault(mode)
}

// Open returns the terminal implementation named by backend
func Open(backend string, mode ColorMode) (Terminal, error) {
	switch strings.ToLower(backend) {
	case "", BackendAuto:
		return newDefault(mode), nil
	case BackendRaw:
		return newRawStdio(mode)
	case BackendTcell:
		return NewTcell(mode), nil
	default:
		return nil, fmt.Errorf("unknown terminal backend %q", backend)
	}
}

// rawTerminal implements Terminal with direct ANSI output over a Backend
type rawTerminal struct {
	backend   Backend
	writer    *bufio.Writer
	input     *inputReader
	colorMode ColorMode

	mu          sync.Mutex
	initialized bool
}

// backendWriter adapts Backend.Write to io.Writer
type backendWriter struct {
	b Backend
}

func (w backendWriter) Write(p []byte) (int, error) {
	if err := w.b.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func newRaw(b Backend, mode ColorMode) *rawTerminal {
	return &rawTerminal{
		backend:   b,
		writer:    bufio.NewWriterSize(backendWriter{b}, 16384),
		colorMode: mode,
	}
}

// Init enters raw mode and sets up terminal
func (t *rawTerminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	if err := t.backend.Init(); err != nil {
		// Partial raw setup is still undone
		t.backend.Fini()
		return fmt.Errorf("raw mode: %w", err)
	}

	t.input = newInputReader(t.backend)

	t.writer.Write(csiAltScreenEnter)
	t.writer.Write(csiCursorHide)
	t.writer.Write(csiAutoWrapOff)
	t.writer.Write(csiClear)
	if err := t.writer.Flush(); err != nil {
		t.backend.Fini()
		return fmt.Errorf("terminal setup: %w", err)
	}

	t.input.start()
	t.initialized = true
	return nil
}

// Fini restores terminal state
func (t *rawTerminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return
	}

	if t.input != nil {
		t.input.stop()
	}

	t.writer.Write(csiSGR0)
	t.writer.Write(csiCursorShow)
	t.writer.Write(csiAltScreenExit)
	// Re-enable auto-wrap after leaving alt screen so the main buffer has it
	t.writer.Write(csiAutoWrapOn)
	t.writer.Flush()

	t.backend.Fini()
	t.initialized = false
}

// Size returns current terminal dimensions
func (t *rawTerminal) Size() (int, int) {
	return t.backend.Size()
}

// ColorMode returns detected color capability
func (t *rawTerminal) ColorMode() ColorMode {
	return t.colorMode
}

// Draw writes a full frame, holding the lock so Fini cannot interleave
func (t *rawTerminal) Draw(frame string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return nil
	}

	if t.colorMode == ColorModeNone {
		frame = StripSGR(frame)
	}
	writeFrame(t.writer, frame)
	return t.writer.Flush()
}

// Events returns the key event channel
func (t *rawTerminal) Events() <-chan Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.input == nil {
		return nil
	}
	return t.input.events()
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiSGR0)
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiAutoWrapOn)
	w.Write(csiRIS)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
