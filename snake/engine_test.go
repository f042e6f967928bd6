package snake

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/voidterm/terminal"
)

// fakeTerminal records frames and raw mode transitions
type fakeTerminal struct {
	mu      sync.Mutex
	events  chan terminal.Event
	frames  []string
	raw     bool
	inits   int
	finis   int
	initErr error
}

func newFakeTerminal() *fakeTerminal {
	return &fakeTerminal{events: make(chan terminal.Event, 64)}
}

func (f *fakeTerminal) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inits++
	if f.initErr != nil {
		return f.initErr
	}
	f.raw = true
	return nil
}

func (f *fakeTerminal) Fini() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finis++
	f.raw = false
}

func (f *fakeTerminal) Size() (int, int) { return 80, 24 }
func (f *fakeTerminal) ColorMode() terminal.ColorMode { return terminal.ColorModeNone }
func (f *fakeTerminal) Events() <-chan terminal.Event { return f.events }

func (f *fakeTerminal) Draw(frame string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeTerminal) lastFrame() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return ""
	}
	return f.frames[len(f.frames)-1]
}

func (f *fakeTerminal) isRaw() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Tick = 5 * time.Millisecond
	cfg.Linger = 0
	cfg.Seed = 1
	return cfg
}

// runAsync starts Run and returns a channel with its result
func runAsync(ctx context.Context, e *Engine) <-chan error {
	done := make(chan error, 1)
	go func() {
		_, err := e.Run(ctx)
		done <- err
	}()
	return done
}

func TestEngine_QuitKeyEndsSessionAndRestoresTerminal(t *testing.T) {
	term := newFakeTerminal()
	e, err := New(testConfig(), term)
	require.NoError(t, err)

	term.events <- terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'q'}

	select {
	case err := <-runAsync(context.Background(), e):
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end on quit")
	}

	out := e.Outcome()
	assert.Equal(t, ReasonQuit, out.Reason)
	assert.Equal(t, 0, out.Score)
	assert.True(t, e.State().GameOver)
	assert.False(t, term.isRaw())
	assert.Equal(t, 1, term.finis)
	assert.Contains(t, term.lastFrame(), "Final score: 0")
}

func TestEngine_ContextCancelStopsBothUnits(t *testing.T) {
	term := newFakeTerminal()
	cfg := testConfig()
	cfg.Tick = time.Hour
	e, err := New(cfg, term)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, e)
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not stop the session")
	}
	assert.Equal(t, ReasonInterrupted, e.Outcome().Reason)
	assert.False(t, term.isRaw())
}

func TestEngine_InitFailureIsTerminalModeError(t *testing.T) {
	term := newFakeTerminal()
	term.initErr = assert.AnError

	_, err := Start(context.Background(), testConfig(), term)
	require.ErrorIs(t, err, ErrTerminalMode)
	assert.Equal(t, 1, term.finis, "restore is attempted even when init fails")
}

func TestEngine_InputClosedEndsGame(t *testing.T) {
	term := newFakeTerminal()
	e, err := New(testConfig(), term)
	require.NoError(t, err)

	term.events <- terminal.Event{Type: terminal.EventError, Err: assert.AnError}
	term.events <- terminal.Event{Type: terminal.EventClosed}

	select {
	case err := <-runAsync(context.Background(), e):
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end when input closed")
	}
	assert.Equal(t, ReasonQuit, e.Outcome().Reason)
}

func TestEngine_TickEatsAndRenders(t *testing.T) {
	term := newFakeTerminal()
	e, err := New(testConfig(), term, WithRand(rand.New(rand.NewSource(5))))
	require.NoError(t, err)

	s := e.State()
	s.Food = Point{11, 5}

	done, err := e.Tick()
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, []Point{{11, 5}, {10, 5}}, s.Snake)
	assert.Equal(t, 1, s.Score)
	assert.Contains(t, term.lastFrame(), "Score: 1")
}

func TestEngine_QueuedQuitKeepsScore(t *testing.T) {
	term := newFakeTerminal()
	e, err := New(testConfig(), term)
	require.NoError(t, err)
	e.State().Score = 4

	e.queue.Push(IntentQuit)
	done, err := e.Tick()
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, e.State().GameOver)
	assert.Equal(t, 4, e.State().Score)
	assert.Equal(t, []Point{{10, 5}}, e.State().Snake, "quit tick does not move")
}

func TestEngine_CollisionEndsWithNote(t *testing.T) {
	term := newFakeTerminal()
	e, err := New(testConfig(), term)
	require.NoError(t, err)

	s := e.State()
	s.setSnake([]Point{{5, 5}, {4, 5}, {4, 4}})
	s.Dir, s.heading = Left, Left

	done, err := e.Tick()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, ReasonCollision, e.Outcome().Reason)
	assert.NotEmpty(t, e.Outcome().Note)
}

// explodingSounder panics when food is eaten
type explodingSounder struct{}

func (explodingSounder) PlayEat()      { panic("speaker on fire") }
func (explodingSounder) PlayGameOver() {}

func TestEngine_TickPanicBecomesInternalError(t *testing.T) {
	term := newFakeTerminal()
	e, err := New(testConfig(), term, WithSounder(explodingSounder{}))
	require.NoError(t, err)
	e.State().Food = Point{11, 5}

	done, err := e.Tick()
	require.ErrorIs(t, err, ErrInternalState)
	assert.True(t, done)
	assert.True(t, e.State().GameOver)
	assert.Equal(t, 1, e.State().Score, "score computed before the failure is kept")
}

func TestEngine_RunRecoversFromTickPanic(t *testing.T) {
	term := newFakeTerminal()
	e, err := New(testConfig(), term, WithSounder(explodingSounder{}))
	require.NoError(t, err)
	e.State().Food = Point{11, 5}

	select {
	case err := <-runAsync(context.Background(), e):
		require.NoError(t, err, "internal errors do not escape Run")
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end after tick panic")
	}
	assert.Equal(t, ReasonCrash, e.Outcome().Reason)
	assert.Equal(t, 1, e.Outcome().Score)
	assert.False(t, term.isRaw())
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Tick = 0
	_, err := New(cfg, newFakeTerminal())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Width = 1
	_, err = New(cfg, newFakeTerminal())
	assert.ErrorIs(t, err, ErrInvalidBoard)
}

// droneSounder panics when the game over cue plays
type droneSounder struct{}

func (droneSounder) PlayEat()      {}
func (droneSounder) PlayGameOver() { panic("speaker on fire") }

func TestEngine_PanicInFinishRestoresTerminal(t *testing.T) {
	term := newFakeTerminal()
	e, err := New(testConfig(), term, WithSounder(droneSounder{}))
	require.NoError(t, err)

	term.events <- terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'q'}

	select {
	case err := <-runAsync(context.Background(), e):
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end after game over panic")
	}

	assert.False(t, term.isRaw())
	assert.Equal(t, 1, term.finis)
	assert.Equal(t, ReasonCrash, e.Outcome().Reason)
	assert.True(t, e.State().GameOver)
	assert.Contains(t, term.lastFrame(), "Final score: 0")
}

// panickyTerminal fails on the first Draw
type panickyTerminal struct {
	*fakeTerminal
}

func (p panickyTerminal) Draw(string) error { panic("frame buffer gone") }

func TestEngine_PanicInDrawRestoresTerminal(t *testing.T) {
	term := panickyTerminal{newFakeTerminal()}
	e, err := New(testConfig(), term)
	require.NoError(t, err)
	e.State().Score = 3

	select {
	case err := <-runAsync(context.Background(), e):
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end after draw panic")
	}

	assert.False(t, term.isRaw())
	assert.Equal(t, ReasonCrash, e.Outcome().Reason)
	assert.Equal(t, 3, e.Outcome().Score)
}
