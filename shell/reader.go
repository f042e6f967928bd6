package shell

import (
	"bufio"
	"context"
	"io"

	"github.com/lixenwraith/voidterm/core"
)

type lineResult struct {
	line string
	err  error
}

// LineReader reads cooked input lines without blocking cancellation
// Exactly one Scan is in flight at a time and only while a caller waits, so
// nothing consumes stdin while a game owns the terminal
type LineReader struct {
	sc      *bufio.Scanner
	results chan lineResult
	pending bool
}

// NewLineReader wraps r
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		sc:      bufio.NewScanner(r),
		results: make(chan lineResult, 1),
	}
}

// ReadLine returns the next line without its terminator, io.EOF at end of input
// If ctx ends first the pending read is kept for the next call
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if !r.pending {
		r.pending = true
		core.Go(func() {
			if r.sc.Scan() {
				r.results <- lineResult{line: r.sc.Text()}
				return
			}
			err := r.sc.Err()
			if err == nil {
				err = io.EOF
			}
			r.results <- lineResult{err: err}
		})
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-r.results:
		r.pending = false
		return res.line, res.err
	}
}
