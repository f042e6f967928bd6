package snake

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/voidterm/terminal"
)

// Config tunes one session
type Config struct {
	Width  int
	Height int
	Tick   time.Duration
	Color  bool
	Seed   int64         // 0 seeds from the clock
	Linger time.Duration // how long the game over screen stays up
}

// DefaultConfig returns the 20×10 board at 150ms per tick
func DefaultConfig() Config {
	return Config{
		Width:  20,
		Height: 10,
		Tick:   150 * time.Millisecond,
		Color:  true,
		Linger: 1500 * time.Millisecond,
	}
}

// Sounder plays game cues
type Sounder interface {
	PlayEat()
	PlayGameOver()
}

type silent struct{}

func (silent) PlayEat()      {}
func (silent) PlayGameOver() {}

const crashNote = "Something broke inside the game. Your score was kept."

// Reason tells why a session ended
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonCollision   Reason = "collision"
	ReasonQuit        Reason = "quit"
	ReasonBoardFull   Reason = "board full"
	ReasonInterrupted Reason = "interrupted"
	ReasonCrash       Reason = "crash"
)

// Result summarises a session
type Result struct {
	Session string
	Score   int
	Length  int
	Ticks   uint64
	Reason  Reason
	Note    string
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger attaches a logger, entries carry the session id
func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) { e.log = l }
}

// WithSounder attaches audio cues
func WithSounder(s Sounder) Option {
	return func(e *Engine) {
		if s != nil {
			e.sound = s
		}
	}
}

// WithRand overrides the food placement source
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// Engine owns one game session: state, key queue and the two concurrent units
type Engine struct {
	cfg   Config
	term  terminal.Terminal
	state *State
	queue keyQueue
	sound Sounder
	log   *logrus.Entry
	rng   *rand.Rand

	session string
	ticks   uint64
	reason  Reason
	note    string
}

// New builds a session; nothing touches the terminal until Run
func New(cfg Config, term terminal.Terminal, opts ...Option) (*Engine, error) {
	if cfg.Tick <= 0 {
		return nil, fmt.Errorf("tick interval must be positive, got %s", cfg.Tick)
	}

	e := &Engine{
		cfg:     cfg,
		term:    term,
		sound:   silent{},
		session: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		e.log = logrus.NewEntry(l)
	}
	e.log = e.log.WithField("session", e.session)

	if e.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		e.rng = rand.New(rand.NewSource(seed))
	}

	state, err := NewState(cfg.Width, cfg.Height, e.rng)
	if err != nil {
		return nil, err
	}
	e.state = state
	return e, nil
}

// Start runs a fresh session to completion and returns the final score
func Start(ctx context.Context, cfg Config, term terminal.Terminal, opts ...Option) (int, error) {
	e, err := New(cfg, term, opts...)
	if err != nil {
		return 0, err
	}
	return e.Run(ctx)
}

// State exposes the board for inspection between ticks
func (e *Engine) State() *State {
	return e.state
}

// Outcome reports the session result, final once Run has returned
func (e *Engine) Outcome() Result {
	return Result{
		Session: e.session,
		Score:   e.state.Score,
		Length:  len(e.state.Snake),
		Ticks:   e.ticks,
		Reason:  e.reason,
		Note:    e.note,
	}
}

// Run owns the terminal for the session: raw mode is entered here and restored on every
// return path. The only error is ErrTerminalMode; in-game failures end the game instead
func (e *Engine) Run(ctx context.Context) (int, error) {
	if err := e.term.Init(); err != nil {
		e.term.Fini()
		return 0, fmt.Errorf("%w: %v", ErrTerminalMode, err)
	}
	defer e.term.Fini()

	e.log.WithFields(logrus.Fields{
		"width":  e.cfg.Width,
		"height": e.cfg.Height,
		"tick":   e.cfg.Tick,
	}).Info("game session started")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := e.term.Events()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		e.capture(gctx, events)
		return nil
	})
	g.Go(func() error {
		// Loop exit stops capture
		defer cancel()
		e.loop(gctx)
		return nil
	})
	g.Wait()

	e.log.WithFields(logrus.Fields{
		"score":  e.state.Score,
		"reason": e.reason,
		"ticks":  e.ticks,
	}).Info("game session ended")
	return e.state.Score, nil
}

// capture moves recognized keys from the terminal into the queue until ctx ends
func (e *Engine) capture(ctx context.Context, events <-chan terminal.Event) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", r).Error("key capture crashed")
			e.queue.Push(IntentQuit)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				e.queue.Push(IntentQuit)
				return
			}
			switch ev.Type {
			case terminal.EventKey:
				if in := IntentFor(ev); in != IntentNone {
					e.queue.Push(in)
				}
			case terminal.EventError:
				e.log.WithError(fmt.Errorf("%w: %v", ErrTransientInput, ev.Err)).Debug("key read failed, retrying")
			case terminal.EventClosed:
				e.log.Warn("input closed, ending game")
				e.queue.Push(IntentQuit)
				return
			}
		}
	}
}

// loop renders the opening frame then ticks at the configured cadence
// A panic anywhere in the loop ends the game as a crash so Run still restores the terminal
func (e *Engine) loop(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.crash(fmt.Errorf("%w: %v", ErrInternalState, r))
			e.drawSafe(RenderSummary(e.state.Score, e.note, e.colored()))
		}
	}()

	e.draw(Render(e.state, e.colored()))

	ticker := time.NewTicker(e.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.state.GameOver = true
			e.reason = ReasonInterrupted
			return
		case <-ticker.C:
		}

		done, err := e.Tick()
		if err != nil {
			e.crash(err)
			done = true
		}
		if done {
			e.finish(ctx)
			return
		}
	}
}

// Tick drains the queue, steps once and renders
// A panic inside the tick becomes ErrInternalState with GameOver set and the score kept
func (e *Engine) Tick() (done bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.state.GameOver = true
			done, err = true, fmt.Errorf("%w: %v", ErrInternalState, r)
		}
	}()

	if e.state.GameOver {
		return true, nil
	}
	e.ticks++

	if e.state.Apply(e.queue.Drain()) {
		e.reason = ReasonQuit
		e.draw(Render(e.state, e.colored()))
		return true, nil
	}

	res := e.state.Step()
	if res.Ate {
		e.sound.PlayEat()
		e.log.WithField("score", e.state.Score).Debug("food eaten")
	}

	e.draw(Render(e.state, e.colored()))

	if e.state.GameOver {
		switch {
		case res.Collided:
			e.reason = ReasonCollision
			e.note = "The snake devoured itself."
		case e.state.Won:
			e.reason = ReasonBoardFull
			e.note = "Nothing is left to eat. The void is full."
		}
		return true, nil
	}
	return false, nil
}

// finish shows the summary and holds it for Linger unless ctx ends first
func (e *Engine) finish(ctx context.Context) {
	e.sound.PlayGameOver()
	e.draw(RenderSummary(e.state.Score, e.note, e.colored()))

	if e.cfg.Linger <= 0 {
		return
	}
	t := time.NewTimer(e.cfg.Linger)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// crash ends the game keeping the score
func (e *Engine) crash(err error) {
	e.log.WithError(err).Error("game loop failed, ending game")
	e.state.GameOver = true
	e.reason = ReasonCrash
	e.note = crashNote
}

// drawSafe draws a frame from a recovery path where another panic must not escape
func (e *Engine) drawSafe(frame string) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", r).Error("summary draw failed")
		}
	}()
	e.draw(frame)
}

func (e *Engine) draw(frame string) {
	if err := e.term.Draw(frame); err != nil {
		e.log.WithError(err).Debug("draw failed")
	}
}

func (e *Engine) colored() bool {
	return e.cfg.Color && e.term.ColorMode() != terminal.ColorModeNone
}
