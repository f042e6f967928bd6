package terminal

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// tcellTerminal implements Terminal on a tcell screen
// tcell owns raw mode and console restoration on every platform it supports
type tcellTerminal struct {
	colorMode ColorMode
	newScreen func() (tcell.Screen, error)

	mu          sync.Mutex
	screen      tcell.Screen
	eventCh     chan Event
	doneCh      chan struct{}
	initialized bool
}

// NewTcell returns a Terminal backed by tcell
func NewTcell(mode ColorMode) Terminal {
	return &tcellTerminal{
		colorMode: mode,
		newScreen: tcell.NewScreen,
	}
}

// newTcellWithScreen is used by tests with tcell.NewSimulationScreen
func newTcellWithScreen(mode ColorMode, s tcell.Screen) *tcellTerminal {
	return &tcellTerminal{
		colorMode: mode,
		newScreen: func() (tcell.Screen, error) { return s, nil },
	}
}

func (t *tcellTerminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	s, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("tcell screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("tcell init: %w", err)
	}
	s.HideCursor()
	s.Clear()

	t.screen = s
	t.eventCh = make(chan Event, 256)
	t.doneCh = make(chan struct{})
	go t.pump(s, t.eventCh, t.doneCh)

	t.initialized = true
	return nil
}

// pump converts tcell events until the screen is finalized (PollEvent returns nil)
func (t *tcellTerminal) pump(s tcell.Screen, out chan<- Event, done chan<- struct{}) {
	defer close(done)
	send := func(ev Event) {
		select {
		case out <- ev:
		default:
		}
	}

	for {
		raw := s.PollEvent()
		if raw == nil {
			send(Event{Type: EventClosed})
			return
		}
		switch ev := raw.(type) {
		case *tcell.EventKey:
			if key := convertTcellKey(ev); key.Key != KeyNone {
				send(key)
			}
		case *tcell.EventError:
			send(Event{Type: EventError, Err: ev})
		}
	}
}

func (t *tcellTerminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return
	}

	t.screen.Fini()
	select {
	case <-t.doneCh:
	case <-time.After(2 * PollInterval):
	}
	t.initialized = false
}

func (t *tcellTerminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.screen == nil {
		return 80, 24
	}
	return t.screen.Size()
}

func (t *tcellTerminal) ColorMode() ColorMode {
	return t.colorMode
}

// Draw paints frame cell by cell, translating the SGR subset frames use into tcell styles
func (t *tcellTerminal) Draw(frame string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return nil
	}

	if t.colorMode == ColorModeNone {
		frame = StripSGR(frame)
	}

	t.screen.Clear()
	style := tcell.StyleDefault
	for y, line := range strings.Split(strings.TrimSuffix(frame, "\n"), "\n") {
		x := 0
		for i := 0; i < len(line); {
			if line[i] == 0x1b && i+1 < len(line) && line[i+1] == '[' {
				end := strings.IndexByte(line[i:], 'm')
				if end > 0 {
					style = applySGR(style, line[i+2:i+end])
					i += end + 1
					continue
				}
			}
			r, size := decodeRune([]byte(line[i:min(len(line), i+4)]))
			t.screen.SetContent(x, y, r, nil, style)
			x++
			i += size
		}
	}
	t.screen.Show()
	return nil
}

func (t *tcellTerminal) Events() <-chan Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eventCh
}

// applySGR folds one "n;n;n" parameter list into style
func applySGR(style tcell.Style, params string) tcell.Style {
	if params == "" {
		return tcell.StyleDefault
	}
	for _, p := range strings.Split(params, ";") {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		switch {
		case n == 0:
			style = tcell.StyleDefault
		case n == 1:
			style = style.Bold(true)
		case n == 2:
			style = style.Dim(true)
		case n == 39:
			style = style.Foreground(tcell.ColorDefault)
		case n >= 30 && n <= 37:
			style = style.Foreground(tcell.PaletteColor(n - 30))
		case n >= 90 && n <= 97:
			style = style.Foreground(tcell.PaletteColor(n - 90 + 8))
		}
	}
	return style
}

// convertTcellKey maps the tcell keys games care about, everything else is KeyNone
func convertTcellKey(ev *tcell.EventKey) Event {
	out := Event{Type: EventKey}
	switch ev.Key() {
	case tcell.KeyRune:
		out.Key = KeyRune
		out.Rune = ev.Rune()
	case tcell.KeyUp:
		out.Key = KeyUp
	case tcell.KeyDown:
		out.Key = KeyDown
	case tcell.KeyLeft:
		out.Key = KeyLeft
	case tcell.KeyRight:
		out.Key = KeyRight
	case tcell.KeyHome:
		out.Key = KeyHome
	case tcell.KeyEnd:
		out.Key = KeyEnd
	case tcell.KeyPgUp:
		out.Key = KeyPageUp
	case tcell.KeyPgDn:
		out.Key = KeyPageDown
	case tcell.KeyInsert:
		out.Key = KeyInsert
	case tcell.KeyDelete:
		out.Key = KeyDelete
	case tcell.KeyEscape:
		out.Key = KeyEscape
	case tcell.KeyEnter:
		out.Key = KeyEnter
	case tcell.KeyTab:
		out.Key = KeyTab
	case tcell.KeyBacktab:
		out.Key = KeyBacktab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		out.Key = KeyBackspace
	case tcell.KeyCtrlC:
		out.Key = KeyCtrlC
		out.Modifiers = ModCtrl
	case tcell.KeyCtrlD:
		out.Key = KeyCtrlD
		out.Modifiers = ModCtrl
	default:
		out.Key = KeyNone
	}
	if ev.Modifiers()&tcell.ModAlt != 0 {
		out.Modifiers |= ModAlt
	}
	return out
}
