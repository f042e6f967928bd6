// Package core holds process-wide crash handling
package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/lixenwraith/voidterm/terminal"
)

var (
	crashMu       sync.Mutex
	crashTerminal terminal.Terminal
	crashLog      func(r any, stack []byte)
	exit          = os.Exit
	stderr        io.Writer = os.Stderr
)

// SetCrashTerminal registers the terminal currently in raw mode, nil when released
func SetCrashTerminal(t terminal.Terminal) {
	crashMu.Lock()
	crashTerminal = t
	crashMu.Unlock()
}

// SetCrashLogger registers a sink for the panic value and stack before exit
func SetCrashLogger(fn func(r any, stack []byte)) {
	crashMu.Lock()
	crashLog = fn
	crashMu.Unlock()
}

// HandleCrash restores the terminal, prints the stack trace and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}
	stack := debug.Stack()

	crashMu.Lock()
	t, logFn := crashTerminal, crashLog
	crashMu.Unlock()

	if t != nil {
		t.Fini()
	} else {
		terminal.EmergencyReset(os.Stdout)
	}
	if logFn != nil {
		logFn(r, stack)
	}

	// \r\n in case termios is still raw
	fmt.Fprintf(stderr, "\r\n\x1b[31mVOIDTERM CRASHED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(stderr, "Stack Trace:\r\n%s\r\n", stack)

	exit(1)
}

// Go runs fn in a new goroutine with panic recovery
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
