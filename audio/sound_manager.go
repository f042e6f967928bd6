package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// SoundManager plays the game and shell cues through one shared mixer
// All Play methods are no-ops until Initialize succeeds, so a machine without
// an audio device runs silently
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	muted       bool
	initialized bool
	log         *logrus.Entry
}

// NewSoundManager creates a manager at the given linear volume in [0,1]
func NewSoundManager(volume float64, log *logrus.Entry) *SoundManager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SoundManager{
		mixer:  &beep.Mixer{},
		volume: clamp01(volume),
		log:    log.WithField("component", "audio"),
	}
}

// Initialize opens the speaker
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100))
	if err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	sm.log.WithField("volume", sm.volume).Debug("speaker ready")
	return nil
}

// Cleanup silences everything; beep has no speaker close so the mixer is just emptied
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// SetMuted toggles output without tearing down the speaker
func (sm *SoundManager) SetMuted(muted bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.muted = muted
}

// SetVolume sets the linear volume in [0,1]
func (sm *SoundManager) SetVolume(v float64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.volume = clamp01(v)
}

// PlayEat plays the short rising chime when the snake feeds
func (sm *SoundManager) PlayEat() {
	sm.play(beep.Take(sampleRate.N(time.Millisecond*90), NewChimeGenerator(sampleRate, 660, 990)))
}

// PlayGameOver plays the falling drone at the end of a game
func (sm *SoundManager) PlayGameOver() {
	sm.play(beep.Take(sampleRate.N(time.Millisecond*900), NewDroneGenerator(sampleRate, time.Now().UnixNano())))
}

// PlayStatic plays line noise while a connection is being established
func (sm *SoundManager) PlayStatic(d time.Duration) {
	sm.play(beep.Take(sampleRate.N(d), NewStaticGenerator(sampleRate, time.Now().UnixNano())))
}

func (sm *SoundManager) play(s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.muted || sm.volume == 0 {
		return
	}

	speaker.Lock()
	sm.mixer.Add(withVolume(s, sm.volume))
	speaker.Unlock()
}

// withVolume maps a linear gain onto beep's base-2 volume scale
func withVolume(s beep.Streamer, v float64) *effects.Volume {
	vol := &effects.Volume{Streamer: s, Base: 2}
	if v <= 0 {
		vol.Silent = true
		return vol
	}
	vol.Volume = math.Log2(v)
	return vol
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
