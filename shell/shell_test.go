package shell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/voidterm/effects"
	"github.com/lixenwraith/voidterm/loggen"
	"github.com/lixenwraith/voidterm/snake"
)

// newTestEnv returns an Env that prints instantly and without color
func newTestEnv(buf *bytes.Buffer) *Env {
	return &Env{
		Out:  buf,
		FX:   effects.New(buf, effects.WithEnabled(false), effects.WithColor(false)),
		Logs: loggen.New(1),
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		kind Kind
		args []string
	}{
		{"", KindEmpty, nil},
		{"   ", KindEmpty, nil},
		{"DIR", KindDir, []string{}},
		{"cd  GAMES ", KindChdir, []string{"GAMES"}},
		{"Ip_Connect 1.2.3.4", KindConnect, []string{"1.2.3.4"}},
		{"list", KindUnknown, []string{}},
		{"format c:", KindUnknown, []string{"c:"}},
	}
	for _, tt := range tests {
		cmd := ParseHome(tt.line)
		assert.Equal(t, tt.kind, cmd.Kind, tt.line)
		if tt.args != nil {
			assert.Equal(t, tt.args, cmd.Args, tt.line)
		}
	}

	assert.Equal(t, KindList, ParseRemote("LIST /etc").Kind)
	assert.Equal(t, KindDecrypt, ParseRemote("decrypt a b").Kind)
	assert.Equal(t, KindUnknown, ParseRemote("dir").Kind)
}

func TestLineReader(t *testing.T) {
	r := NewLineReader(strings.NewReader("one\ntwo"))
	ctx := context.Background()

	line, err := r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "one", line)

	line, err = r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", line)

	_, err = r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_CancelKeepsPendingRead(t *testing.T) {
	pr, pw := io.Pipe()
	r := NewLineReader(pr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	go pw.Write([]byte("late\n"))
	line, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", line)
	pw.Close()
}

// Emergency and intro sequences only need to render their key lines
func TestSequences(t *testing.T) {
	var buf bytes.Buffer
	fx := effects.New(&buf, effects.WithEnabled(false), effects.WithColor(false))

	Intro(fx)
	EmergencyShutdown(fx)

	out := buf.String()
	assert.Contains(t, out, "=== HOME TERMINAL ===")
	assert.Contains(t, out, "[!] EMERGENCY SHUTDOWN INITIATED")
	assert.Contains(t, out, "Cleaning up: [")
	assert.Contains(t, out, "[!] SYSTEM TERMINATED")
}

// fakeGame records launches
type fakeGame struct {
	calls int
	score int
	err   error
}

func (g *fakeGame) play(ctx context.Context) (snake.Result, error) {
	g.calls++
	if g.err != nil {
		return snake.Result{}, g.err
	}
	return snake.Result{Score: g.score, Reason: snake.ReasonCollision}, nil
}

type noiseRecorder struct{ played []time.Duration }

func (n *noiseRecorder) PlayStatic(d time.Duration) { n.played = append(n.played, d) }
