// Package sound synthesizes the drum kit samples and writes them as WAV files.
package sound

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// SampleRate is the rate every kit piece is rendered at.
const SampleRate = 44100

// Piece describes how one kit sound is synthesized: a sine tone, white noise
// or both, shaped by an exponential decay envelope.
type Piece struct {
	Name     string
	Duration float64 // seconds
	Tone     float64 // sine frequency in Hz; 0 for none
	Noise    bool
	Decay    float64 // envelope is exp(-linspace(0, Decay))
}

// Kit is the built-in drum kit.
var Kit = map[string]Piece{
	"hihat":  {Name: "hihat", Duration: 0.1, Noise: true, Decay: 10},
	"snare":  {Name: "snare", Duration: 0.1, Tone: 200, Noise: true, Decay: 8},
	"cymbal": {Name: "cymbal", Duration: 0.2, Noise: true, Decay: 5},
	"tom":    {Name: "tom", Duration: 0.15, Tone: 100, Decay: 6},
}

// Names returns the kit piece names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Kit))
	for name := range Kit {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the kit piece with the given name.
func Lookup(name string) (Piece, error) {
	p, ok := Kit[name]
	if !ok {
		return Piece{}, fmt.Errorf("unknown sample %q", name)
	}
	return p, nil
}

// Len returns the number of samples the piece renders to.
func (p Piece) Len() int {
	return int(float64(SampleRate) * p.Duration)
}

// Render synthesizes the piece as samples in [-1, 1]. The rng drives the noise
// component; pass a seeded source for reproducible output.
func (p Piece) Render(rng *rand.Rand) []float64 {
	n := p.Len()
	if n == 0 {
		return nil
	}

	out := make([]float64, n)

	switch {
	case p.Tone > 0 && p.Noise:
		// Equal mix of tone and noise.
		for i := range out {
			t := float64(i) / SampleRate
			out[i] = 0.5*math.Sin(2*math.Pi*p.Tone*t) + 0.5*noise(rng)
		}
	case p.Tone > 0:
		for i := range out {
			t := float64(i) / SampleRate
			out[i] = math.Sin(2 * math.Pi * p.Tone * t)
		}
	case p.Noise:
		for i := range out {
			out[i] = noise(rng)
		}
	}

	floats.Mul(out, envelope(n, p.Decay))
	return out
}

// envelope returns exp(-x) for x spaced evenly over [0, decay].
func envelope(n int, decay float64) []float64 {
	env := make([]float64, n)
	if n == 1 {
		env[0] = 1
		return env
	}
	floats.Span(env, 0, decay)
	for i, x := range env {
		env[i] = math.Exp(-x)
	}
	return env
}

// noise returns uniform white noise in [-0.5, 0.5).
func noise(rng *rand.Rand) float64 {
	return rng.Float64() - 0.5
}

// Peak returns the largest absolute sample value.
func Peak(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return math.Max(math.Abs(floats.Max(samples)), math.Abs(floats.Min(samples)))
}
