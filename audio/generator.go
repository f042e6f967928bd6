package audio

import (
	"math"

	"github.com/gopxl/beep"
)

// ChimeGenerator glides between two pitches with a plucked envelope
type ChimeGenerator struct {
	sr       beep.SampleRate
	from, to float64
	pos      int
}

// NewChimeGenerator creates a chime sweeping from one frequency to another over 90ms
func NewChimeGenerator(sr beep.SampleRate, from, to float64) *ChimeGenerator {
	return &ChimeGenerator{sr: sr, from: from, to: to}
}

func (g *ChimeGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	span := float64(g.sr) * 0.09
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		p := math.Min(float64(g.pos)/span, 1)
		freq := g.from + (g.to-g.from)*p

		sample := 0.25 * math.Exp(-t*30) * math.Sin(2*math.Pi*freq*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ChimeGenerator) Err() error {
	return nil
}

// DroneGenerator is a detuned descending drone with a noisy tail
type DroneGenerator struct {
	sr   beep.SampleRate
	pos  int
	seed int64
}

// NewDroneGenerator creates a game over drone
func NewDroneGenerator(sr beep.SampleRate, seed int64) *DroneGenerator {
	return &DroneGenerator{sr: sr, seed: seed}
}

func (g *DroneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		envelope := math.Exp(-t * 3)
		freq := 110 * math.Exp(-t*0.8)

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1

		left := 0.2*math.Sin(2*math.Pi*freq*t) + 0.1*math.Sin(2*math.Pi*freq*1.01*t)
		right := 0.2*math.Sin(2*math.Pi*freq*t) + 0.1*math.Sin(2*math.Pi*freq*0.99*t)

		samples[i][0] = envelope * (left + 0.05*noise)
		samples[i][1] = envelope * (right + 0.05*noise)
		g.pos++
	}
	return len(samples), true
}

func (g *DroneGenerator) Err() error {
	return nil
}

// StaticGenerator emits band-limited noise bursts like a failing modem line
type StaticGenerator struct {
	sr   beep.SampleRate
	pos  int
	seed int64
	last float64
}

// NewStaticGenerator creates a static generator
func NewStaticGenerator(sr beep.SampleRate, seed int64) *StaticGenerator {
	return &StaticGenerator{sr: sr, seed: seed}
}

func (g *StaticGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1

		// One-pole low-pass
		g.last += 0.2 * (noise - g.last)

		// 8Hz gating gives the crackle its rhythm
		gate := 0.5 + 0.5*math.Sin(2*math.Pi*8*t)
		sample := 0.15 * gate * g.last

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *StaticGenerator) Err() error {
	return nil
}
