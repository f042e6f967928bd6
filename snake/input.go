package snake

import (
	"sync"
	"unicode"

	"github.com/lixenwraith/voidterm/terminal"
)

// Intent is a recognized game key
type Intent uint8

const (
	IntentNone Intent = iota
	IntentUp
	IntentDown
	IntentLeft
	IntentRight
	IntentQuit
)

func (i Intent) String() string {
	switch i {
	case IntentUp:
		return "up"
	case IntentDown:
		return "down"
	case IntentLeft:
		return "left"
	case IntentRight:
		return "right"
	case IntentQuit:
		return "quit"
	}
	return "none"
}

// IntentFor maps a key event: WASD in either case, arrows, q/Esc/Ctrl+C to quit
func IntentFor(ev terminal.Event) Intent {
	if ev.Type != terminal.EventKey {
		return IntentNone
	}

	switch ev.Key {
	case terminal.KeyUp:
		return IntentUp
	case terminal.KeyDown:
		return IntentDown
	case terminal.KeyLeft:
		return IntentLeft
	case terminal.KeyRight:
		return IntentRight
	case terminal.KeyEscape, terminal.KeyCtrlC:
		return IntentQuit
	case terminal.KeyRune:
		switch unicode.ToLower(ev.Rune) {
		case 'w':
			return IntentUp
		case 's':
			return IntentDown
		case 'a':
			return IntentLeft
		case 'd':
			return IntentRight
		case 'q':
			return IntentQuit
		}
	}
	return IntentNone
}

// keyQueue is the only structure shared between capture and the tick loop
type keyQueue struct {
	mu    sync.Mutex
	items []Intent
}

// Push appends in arrival order
func (q *keyQueue) Push(i Intent) {
	q.mu.Lock()
	q.items = append(q.items, i)
	q.mu.Unlock()
}

// Drain takes every pending intent
func (q *keyQueue) Drain() []Intent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
