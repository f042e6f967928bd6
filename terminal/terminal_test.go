package terminal

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend captures writes and raw mode transitions
type recordingBackend struct {
	scriptedBackend
	mu      sync.Mutex
	out     bytes.Buffer
	raw     bool
	inits   int
	initErr error
}

func (b *recordingBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inits++
	if b.initErr != nil {
		return b.initErr
	}
	b.raw = true
	return nil
}

func (b *recordingBackend) Fini() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raw = false
}

func (b *recordingBackend) Write(p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out.Write(p)
	return nil
}

func (b *recordingBackend) isRaw() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raw
}

func TestRawTerminal_InitFiniRestores(t *testing.T) {
	b := &recordingBackend{}
	term := newRaw(b, ColorMode256)

	require.NoError(t, term.Init())
	assert.True(t, b.isRaw())
	require.NotNil(t, term.Events())

	term.Fini()
	assert.False(t, b.isRaw())
	term.Fini() // idempotent

	// Reusable after Fini
	require.NoError(t, term.Init())
	assert.True(t, b.isRaw())
	term.Fini()
	assert.Equal(t, 2, b.inits)
}

func TestRawTerminal_InitFailureStillRestores(t *testing.T) {
	b := &recordingBackend{initErr: assert.AnError}
	term := newRaw(b, ColorMode256)

	err := term.Init()
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, b.isRaw())
}

func TestRawTerminal_DrawTranslatesNewlines(t *testing.T) {
	b := &recordingBackend{}
	term := newRaw(b, ColorModeNone)
	require.NoError(t, term.Init())
	defer term.Fini()

	require.NoError(t, term.Draw("\x1b[32mab\x1b[0m\ncd\n"))

	b.mu.Lock()
	out := b.out.String()
	b.mu.Unlock()
	assert.Contains(t, out, "ab\x1b[K\r\ncd")
	assert.NotContains(t, out, "\x1b[32m", "plain mode strips color")
}

func TestStripSGR(t *testing.T) {
	assert.Equal(t, "score 3", StripSGR("\x1b[1;33mscore\x1b[0m 3"))
	assert.Equal(t, "no escapes", StripSGR("no escapes"))
	assert.Equal(t, "\x1b[2J", StripSGR("\x1b[2J"), "non-SGR CSI kept")
}

func TestParseColorMode(t *testing.T) {
	assert.Equal(t, ColorMode256, ParseColorMode("256"))
	assert.Equal(t, ColorModeTrueColor, ParseColorMode("TrueColor"))
	assert.Equal(t, ColorModeNone, ParseColorMode("none"))

	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, ColorModeNone, ParseColorMode("auto"))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("vt52", ColorMode256)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "vt52"))
}

func TestApplySGR(t *testing.T) {
	st := applySGR(tcell.StyleDefault, "1;32")
	fg, _, attr := st.Decompose()
	assert.Equal(t, tcell.PaletteColor(2), fg)
	assert.NotZero(t, attr&tcell.AttrBold)

	st = applySGR(st, "0")
	assert.Equal(t, tcell.StyleDefault, st)

	st = applySGR(tcell.StyleDefault, "91")
	fg, _, _ = st.Decompose()
	assert.Equal(t, tcell.PaletteColor(9), fg)
}
