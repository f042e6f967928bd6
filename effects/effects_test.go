package effects

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sleepRecorder collects requested delays instead of waiting
type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.calls = append(s.calls, d)
}

func (s *sleepRecorder) total() time.Duration {
	var sum time.Duration
	for _, d := range s.calls {
		sum += d
	}
	return sum
}

func newTestEffects(buf *bytes.Buffer, rec *sleepRecorder, opts ...Option) *Effects {
	opts = append([]Option{WithSleep(rec.sleep), WithRand(rand.New(rand.NewSource(1)))}, opts...)
	return New(buf, opts...)
}

func TestTypeText_DelaysPerRune(t *testing.T) {
	var buf bytes.Buffer
	rec := &sleepRecorder{}
	e := newTestEffects(&buf, rec, WithTypeDelay(10*time.Millisecond))

	e.TypeText("héllo")

	assert.Equal(t, "héllo\n", buf.String())
	assert.Len(t, rec.calls, 5, "one delay per rune, not per byte")
	assert.Equal(t, 50*time.Millisecond, rec.total())
}

func TestTypeText_Disabled(t *testing.T) {
	var buf bytes.Buffer
	rec := &sleepRecorder{}
	e := newTestEffects(&buf, rec, WithEnabled(false))

	e.TypeText("no waiting")
	e.Pause(time.Second)

	assert.Equal(t, "no waiting\n", buf.String())
	assert.Empty(t, rec.calls)
}

func TestProgressBar_FillsToHundred(t *testing.T) {
	var buf bytes.Buffer
	rec := &sleepRecorder{}
	e := newTestEffects(&buf, rec)

	e.ProgressBar(400*time.Millisecond, "Loading")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\nLoading: ["+strings.Repeat(" ", BarWidth)+"] 0%"))
	assert.Contains(t, out, "\rLoading: ["+strings.Repeat("=", BarWidth)+"] 100%\n")
	assert.Len(t, rec.calls, BarWidth+1)
	assert.Equal(t, 10*time.Millisecond, rec.calls[0])
}

func TestProgressLine(t *testing.T) {
	line := progressLine("Sync", 10)
	assert.Equal(t, "Sync: ["+strings.Repeat("=", 10)+strings.Repeat(" ", 30)+"] 25%", line)
}

func TestMatrix_RowsAndClear(t *testing.T) {
	var buf bytes.Buffer
	rec := &sleepRecorder{}
	e := newTestEffects(&buf, rec, WithColor(false))

	e.Matrix(200 * time.Millisecond)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	for _, l := range lines {
		assert.Len(t, l, MatrixWidth)
		assert.Empty(t, strings.Trim(l, "01"))
	}
	assert.Len(t, rec.calls, 4)
}

func TestMatrix_ColorWrapsRows(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEffects(&buf, &sleepRecorder{})

	e.Matrix(10 * time.Millisecond)

	assert.True(t, strings.HasPrefix(buf.String(), sgrGreen))
	assert.True(t, strings.HasSuffix(buf.String(), sgrClear))
}

func TestPaint(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, "\x1b[31mx\x1b[0m", New(&buf).Paint("\x1b[31m", "x"))
	assert.Equal(t, "x", New(&buf, WithColor(false)).Paint("\x1b[31m", "x"))
}

type brokenWriter struct{ n int }

func (b *brokenWriter) Write(p []byte) (int, error) {
	b.n++
	return 0, errors.New("pipe closed")
}

func TestWriteErrorIsSticky(t *testing.T) {
	w := &brokenWriter{}
	rec := &sleepRecorder{}
	e := New(w, WithSleep(rec.sleep))

	e.TypeText("abc")
	e.ProgressBar(time.Second, "x")

	require.Error(t, e.Err())
	assert.Equal(t, 1, w.n)
	assert.Empty(t, rec.calls, "no sleeping once output is gone")
}
