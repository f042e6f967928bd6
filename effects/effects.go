// Package effects draws the shell's typewriter, progress bar and matrix animations
package effects

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"
)

const (
	DefaultTypeDelay = 20 * time.Millisecond
	BarWidth         = 40
	MatrixWidth      = 80
	matrixRowDelay   = 50 * time.Millisecond
)

const (
	sgrReset = "\x1b[0m"
	sgrGreen = "\x1b[32m"
	sgrClear = "\x1b[2J\x1b[H"
)

// Effects writes animations to one output
// Write errors are sticky: after the first failure every call is a no-op and Err reports it
type Effects struct {
	w       io.Writer
	delay   time.Duration
	enabled bool
	color   bool
	sleep   func(time.Duration)
	rng     *rand.Rand
	err     error
}

// Option configures Effects
type Option func(*Effects)

// WithTypeDelay sets the per-rune delay of TypeText
func WithTypeDelay(d time.Duration) Option {
	return func(e *Effects) { e.delay = d }
}

// WithEnabled false prints every effect's final state without waiting
func WithEnabled(enabled bool) Option {
	return func(e *Effects) { e.enabled = enabled }
}

// WithColor toggles SGR output
func WithColor(color bool) Option {
	return func(e *Effects) { e.color = color }
}

// WithSleep replaces time.Sleep, tests pass a recorder
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Effects) { e.sleep = sleep }
}

// WithRand seeds the matrix noise
func WithRand(r *rand.Rand) Option {
	return func(e *Effects) { e.rng = r }
}

// New creates Effects on w
func New(w io.Writer, opts ...Option) *Effects {
	e := &Effects{
		w:       w,
		delay:   DefaultTypeDelay,
		enabled: true,
		color:   true,
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// Err returns the first write error
func (e *Effects) Err() error {
	return e.err
}

// Color reports whether SGR sequences are emitted
func (e *Effects) Color() bool {
	return e.color
}

// Paint wraps s in an SGR sequence when color is on
func (e *Effects) Paint(sgr, s string) string {
	if !e.color || sgr == "" {
		return s
	}
	return sgr + s + sgrReset
}

func (e *Effects) write(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *Effects) pause(d time.Duration) {
	if e.enabled && d > 0 && e.err == nil {
		e.sleep(d)
	}
}

// TypeText prints text one rune at a time followed by a newline
func (e *Effects) TypeText(text string) {
	if !e.enabled || e.delay <= 0 {
		e.write(text + "\n")
		return
	}
	for _, r := range text {
		e.write(string(r))
		e.pause(e.delay)
	}
	e.write("\n")
}

// Pause waits d when effects are enabled
func (e *Effects) Pause(d time.Duration) {
	e.pause(d)
}

// ProgressBar fills a BarWidth-cell bar over d, redrawing in place
func (e *Effects) ProgressBar(d time.Duration, message string) {
	if !e.enabled {
		e.write("\n" + progressLine(message, BarWidth) + "\n")
		return
	}

	e.write("\n" + progressLine(message, 0))
	step := d / BarWidth
	for i := 0; i <= BarWidth; i++ {
		e.pause(step)
		e.write("\r" + progressLine(message, i))
	}
	e.write("\n")
}

// progressLine renders "msg: [===   ] 37%"
func progressLine(message string, filled int) string {
	percent := filled * 100 / BarWidth
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", BarWidth-filled)
	return fmt.Sprintf("%s: [%s] %d%%", message, bar, percent)
}

// Matrix streams rows of binary noise for d, then clears the screen
func (e *Effects) Matrix(d time.Duration) {
	if !e.enabled {
		return
	}

	rows := int(d / matrixRowDelay)
	if rows < 1 {
		rows = 1
	}

	line := make([]byte, MatrixWidth)
	for range rows {
		for i := range line {
			line[i] = '0' + byte(e.rng.Intn(2))
		}
		e.write(e.Paint(sgrGreen, string(line)) + "\n")
		e.pause(matrixRowDelay)
	}
	e.Clear()
}

// Clear erases the screen and homes the cursor
func (e *Effects) Clear() {
	if !e.color {
		// Plain terminals get a visual break instead of control sequences
		e.write("\n")
		return
	}
	e.write(sgrClear)
}
