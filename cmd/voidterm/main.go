package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/voidterm/audio"
	"github.com/lixenwraith/voidterm/config"
	"github.com/lixenwraith/voidterm/core"
	"github.com/lixenwraith/voidterm/effects"
	"github.com/lixenwraith/voidterm/loggen"
	"github.com/lixenwraith/voidterm/shell"
	"github.com/lixenwraith/voidterm/snake"
	"github.com/lixenwraith/voidterm/terminal"
)

var (
	configFlag   = flag.String("config", config.DefaultPath, "Path to TOML config")
	widthFlag    = flag.Int("width", 0, "Snake board width")
	heightFlag   = flag.Int("height", 0, "Snake board height")
	tickFlag     = flag.Duration("tick", 0, "Snake tick interval, e.g. 150ms")
	backendFlag  = flag.String("backend", "", "Terminal backend: auto, raw, tcell")
	colorFlag    = flag.String("color", "", "Color mode: auto, 256, truecolor, none")
	muteFlag     = flag.Bool("mute", false, "Disable sound")
	debugFlag    = flag.Bool("debug", false, "Write logs to "+logDir+"/"+logFileName)
	logLevelFlag = flag.String("log-level", "", "Log level: debug, info, warn, error")
)

func main() {
	// Panic Recovery: terminal must come back even if the shell crashes
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\n\x1b[31mVOIDTERM CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()
	os.Exit(run())
}

// run owns every resource of the process; its defers complete before the exit code is used
func run() int {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	applyFlags(&cfg, flag.CommandLine)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		return 1
	}

	logger, logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetLevel(logLevel(cfg.LogLevel, *debugFlag))
	log := logger.WithField("component", "main")
	core.SetCrashLogger(func(r any, stack []byte) {
		log.WithField("panic", r).WithField("stack", string(stack)).Error("crashed")
	})

	sound := audio.NewSoundManager(cfg.Audio.Volume, logger.WithField("component", "audio"))
	if cfg.Audio.Enabled {
		if err := sound.Initialize(); err != nil {
			log.WithError(err).Warn("audio unavailable, continuing without sound")
		}
		defer sound.Cleanup()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	colorMode := cfg.ColorMode()
	fx := effects.New(os.Stdout,
		effects.WithTypeDelay(cfg.Effects.TypeDelay.Duration),
		effects.WithEnabled(cfg.Effects.Enabled),
		effects.WithColor(colorMode != terminal.ColorModeNone),
	)

	env := &shell.Env{
		Out:   os.Stdout,
		FX:    fx,
		Log:   logger.WithField("component", "shell"),
		Noise: sound,
		Game:  gameLauncher(cfg, sound, logger.WithField("component", "snake")),
		Logs:  loggen.New(cfg.Snake.Seed),
	}

	log.WithFields(logrus.Fields{
		"backend": cfg.Terminal.Backend,
		"color":   colorMode,
		"board":   fmt.Sprintf("%dx%d", cfg.Snake.Width, cfg.Snake.Height),
	}).Info("voidterm starting")

	shell.Intro(fx)
	return session(ctx, stop, env, os.Stdin, log)
}

// session runs the home shell on in and maps its end to an exit code
// A signal at the prompt plays the shutdown sequence and still exits 0
func session(ctx context.Context, stop context.CancelFunc, env *shell.Env, in io.Reader, log *logrus.Entry) int {
	err := shell.NewHome(env).Run(ctx, shell.NewLineReader(in))
	if errors.Is(err, context.Canceled) {
		// Signal arrived while the shell owned the prompt
		stop()
		shell.EmergencyShutdown(env.FX)
		return 0
	}
	if err != nil {
		log.WithError(err).Error("shell stopped")
		fmt.Fprintf(os.Stderr, "voidterm: %v\n", err)
		return 1
	}
	return 0
}

// logLevel resolves the configured level; -debug never logs less than debug
func logLevel(configured string, debug bool) logrus.Level {
	level, err := logrus.ParseLevel(configured)
	if err != nil {
		level = logrus.InfoLevel
	}
	if debug && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	return level
}

// applyFlags copies explicitly set flags over the loaded config
func applyFlags(cfg *config.Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Snake.Width = f.Value.(flag.Getter).Get().(int)
		case "height":
			cfg.Snake.Height = f.Value.(flag.Getter).Get().(int)
		case "tick":
			cfg.Snake.Tick.Duration = f.Value.(flag.Getter).Get().(time.Duration)
		case "backend":
			cfg.Terminal.Backend = f.Value.String()
		case "color":
			cfg.Terminal.Color = f.Value.String()
		case "mute":
			if f.Value.(flag.Getter).Get().(bool) {
				cfg.Audio.Enabled = false
			}
		case "log-level":
			cfg.LogLevel = f.Value.String()
		}
	})
}

// gameLauncher opens a fresh terminal per run so the shell keeps cooked stdin between games
func gameLauncher(cfg config.Config, sound snake.Sounder, log *logrus.Entry) shell.GameFunc {
	return func(ctx context.Context) (snake.Result, error) {
		term, err := terminal.Open(cfg.Terminal.Backend, cfg.ColorMode())
		if err != nil {
			return snake.Result{}, err
		}

		eng, err := snake.New(cfg.Game(), term, snake.WithLogger(log), snake.WithSounder(sound))
		if err != nil {
			return snake.Result{}, err
		}

		core.SetCrashTerminal(term)
		defer core.SetCrashTerminal(nil)

		if _, err := eng.Run(ctx); err != nil {
			return eng.Outcome(), err
		}
		return eng.Outcome(), nil
	}
}
