package terminal

import (
	"bufio"
	"strings"
)

// Pre-allocated ANSI sequence fragments
var (
	csiSGR0      = []byte("\x1b[0m")
	csiHome      = []byte("\x1b[H")
	csiClear     = []byte("\x1b[2J\x1b[H")
	csiEraseLine = []byte("\x1b[K")
	csiEraseDown = []byte("\x1b[J")
	csiRIS       = []byte("\x1bc") // Reset to Initial State (emergency)

	// Cursor control
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	// Screen modes
	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")
	// DECAWM: ?7l disables wrapping, preventing scroll when a frame line hits the right edge
	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")
)

// writeFrame homes the cursor and writes frame line by line, erasing stale content
// Raw mode disables output post-processing so every line ends with explicit CR LF
func writeFrame(w *bufio.Writer, frame string) {
	w.Write(csiHome)
	lines := strings.Split(strings.TrimSuffix(frame, "\n"), "\n")
	for i, line := range lines {
		w.WriteString(line)
		w.Write(csiEraseLine)
		if i < len(lines)-1 {
			w.WriteString("\r\n")
		}
	}
	w.Write(csiSGR0)
	w.Write(csiEraseDown)
}

// StripSGR removes SGR escape sequences (ESC [ ... m) from s
func StripSGR(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] == ';' || (s[j] >= '0' && s[j] <= '9')) {
				j++
			}
			if j < len(s) && s[j] == 'm' {
				i = j
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
