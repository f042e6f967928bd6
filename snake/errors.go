package snake

import "errors"

var (
	// ErrTransientInput marks a single failed key read, capture retries next poll
	ErrTransientInput = errors.New("transient input error")

	// ErrTerminalMode is returned when raw mode cannot be entered or restored
	ErrTerminalMode = errors.New("terminal mode error")

	// ErrInternalState marks an unexpected failure inside a tick, the game ends with its score
	ErrInternalState = errors.New("internal game state error")

	// ErrInvalidBoard rejects boards too small to hold a snake and a food cell
	ErrInvalidBoard = errors.New("invalid board size")
)
