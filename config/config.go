// Package config loads voidterm settings from TOML and validates them
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/voidterm/snake"
	"github.com/lixenwraith/voidterm/terminal"
)

// DefaultPath is read when -config is not given
const DefaultPath = "voidterm.toml"

// Tick bounds accepted for the game loop
const (
	MinTick = 20 * time.Millisecond
	MaxTick = 2 * time.Second
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Duration decodes TOML strings such as "150ms"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Snake holds board and pacing
type Snake struct {
	Width  int      `toml:"width"`
	Height int      `toml:"height"`
	Tick   Duration `toml:"tick"`
	Color  bool     `toml:"color"`
	Seed   int64    `toml:"seed"`
}

// Terminal selects the backend and palette
type Terminal struct {
	Backend string `toml:"backend"`
	Color   string `toml:"color"`
}

// Effects tunes the typewriter and progress animations
type Effects struct {
	TypeDelay Duration `toml:"type_delay"`
	Enabled   bool     `toml:"enabled"`
}

// Audio controls the sound cues
type Audio struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"`
}

// Config is the full file
type Config struct {
	LogLevel string   `toml:"log_level"`
	Snake    Snake    `toml:"snake"`
	Terminal Terminal `toml:"terminal"`
	Effects  Effects  `toml:"effects"`
	Audio    Audio    `toml:"audio"`
}

// Defaults returns the built-in settings
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Snake: Snake{
			Width:  20,
			Height: 10,
			Tick:   Duration{150 * time.Millisecond},
			Color:  true,
		},
		Terminal: Terminal{
			Backend: terminal.BackendAuto,
			Color:   "auto",
		},
		Effects: Effects{
			TypeDelay: Duration{20 * time.Millisecond},
			Enabled:   true,
		},
		Audio: Audio{
			Enabled: true,
			Volume:  0.5,
		},
	}
}

// Load reads path over the defaults; a missing file yields the defaults
// Ranges are not checked here so flag overrides can still repair a file value; call Validate last
func Load(path string) (Config, error) {
	cfg := Defaults()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return cfg, fmt.Errorf("load %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logrus.WithField("component", "config").
			WithField("keys", undecoded).
			Warn("ignoring unknown config keys")
	}
	return cfg, nil
}

// Validate checks ranges and enumerations, naming the first bad field
func (c Config) Validate() error {
	if c.Snake.Width < snake.MinSize || c.Snake.Width > snake.MaxSize {
		return fmt.Errorf("%w: snake.width %d outside [%d,%d]", ErrInvalid, c.Snake.Width, snake.MinSize, snake.MaxSize)
	}
	if c.Snake.Height < snake.MinSize || c.Snake.Height > snake.MaxSize {
		return fmt.Errorf("%w: snake.height %d outside [%d,%d]", ErrInvalid, c.Snake.Height, snake.MinSize, snake.MaxSize)
	}
	if c.Snake.Tick.Duration < MinTick || c.Snake.Tick.Duration > MaxTick {
		return fmt.Errorf("%w: snake.tick %s outside [%s,%s]", ErrInvalid, c.Snake.Tick, MinTick, MaxTick)
	}

	switch c.Terminal.Backend {
	case terminal.BackendAuto, terminal.BackendRaw, terminal.BackendTcell:
	default:
		return fmt.Errorf("%w: terminal.backend %q", ErrInvalid, c.Terminal.Backend)
	}
	switch strings.ToLower(c.Terminal.Color) {
	case "", "auto", "256", "truecolor", "true", "24bit", "none", "plain", "off":
	default:
		return fmt.Errorf("%w: terminal.color %q", ErrInvalid, c.Terminal.Color)
	}

	if c.Effects.TypeDelay.Duration < 0 {
		return fmt.Errorf("%w: effects.type_delay must not be negative", ErrInvalid)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio.volume %.2f outside [0,1]", ErrInvalid, c.Audio.Volume)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	return nil
}

// ColorMode resolves "auto" against the environment
func (c Config) ColorMode() terminal.ColorMode {
	return terminal.ParseColorMode(c.Terminal.Color)
}

// Game converts the [snake] section into an engine config
func (c Config) Game() snake.Config {
	gc := snake.DefaultConfig()
	gc.Width = c.Snake.Width
	gc.Height = c.Snake.Height
	gc.Tick = c.Snake.Tick.Duration
	gc.Color = c.Snake.Color
	gc.Seed = c.Snake.Seed
	return gc
}
