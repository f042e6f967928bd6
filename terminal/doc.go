// Package terminal provides raw-mode terminal access for full-frame text games.
//
// Features:
//   - Raw stdin capture with a short poll timeout (non-blocking key reader)
//   - Escape sequence parsing for arrows, control keys and UTF-8 runes
//   - Alternate screen, hidden cursor, full-frame redraw
//   - Clean terminal restoration on exit/panic
//
// Two implementations sit behind the Terminal interface: a direct ANSI backend on
// golang.org/x/term (unix) and a tcell screen (every platform, default off unix).
package terminal
