// Package shell implements the home computer prompt and the remote server session
package shell

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/voidterm/effects"
	"github.com/lixenwraith/voidterm/loggen"
	"github.com/lixenwraith/voidterm/snake"
)

// ServerIP is the only address ip_connect can reach
const ServerIP = "192.168.13.666"

const (
	sgrCyan  = "\x1b[1;36m"
	sgrGreen = "\x1b[1;32m"
	sgrRed   = "\x1b[1;31m"
)

// GameFunc plays one snake session on the terminal
type GameFunc func(ctx context.Context) (snake.Result, error)

// Noise plays ambient sound during connection sequences
type Noise interface {
	PlayStatic(d time.Duration)
}

type quiet struct{}

func (quiet) PlayStatic(time.Duration) {}

// Env is what both shells write to and launch from
type Env struct {
	Out   io.Writer
	FX    *effects.Effects
	Log   *logrus.Entry
	Noise Noise
	Game  GameFunc
	Logs  *loggen.Generator
}

func (env *Env) defaults() {
	if env.FX == nil {
		env.FX = effects.New(env.Out)
	}
	if env.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		env.Log = logrus.NewEntry(l)
	}
	if env.Noise == nil {
		env.Noise = quiet{}
	}
	if env.Logs == nil {
		env.Logs = loggen.New(0)
	}
}

func (env *Env) println(s string) {
	fmt.Fprintln(env.Out, s)
}

func (env *Env) prompt(p string) {
	fmt.Fprint(env.Out, env.FX.Paint(sgrCyan, p))
}

// Intro plays the opening scene of the home computer
func Intro(fx *effects.Effects) {
	fx.Clear()
	fx.TypeText(fx.Paint(sgrGreen, "=== HOME TERMINAL ==="))
	fx.TypeText("\nJust another boring night...")
	fx.Pause(time.Second)
	fx.TypeText("\nScrolling through old files...")
	fx.Pause(500 * time.Millisecond)
	fx.TypeText("\nType 'help' for available commands.\n")
}

// EmergencyShutdown is shown when the user interrupts the shell
func EmergencyShutdown(fx *effects.Effects) {
	fx.Clear()
	fx.TypeText("\n" + fx.Paint(sgrRed, "[!] EMERGENCY SHUTDOWN INITIATED"))
	fx.ProgressBar(time.Second, "Cleaning up")
	fx.TypeText(fx.Paint(sgrRed, "[!] SYSTEM TERMINATED"))
}
