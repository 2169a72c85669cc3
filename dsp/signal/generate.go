// Package signal generates float32 test signals for rendering and
// measurement.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-mojo/dsp/core"
)

// Generator creates deterministic signals at a fixed sample rate.
type Generator struct {
	sampleRate float64
	seed       int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator for sampleRate.
func NewGenerator(sampleRate float64, opts ...Option) (*Generator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("signal: %w: %f", core.ErrInvalidSampleRate, sampleRate)
	}

	g := &Generator{sampleRate: sampleRate, seed: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g, nil
}

// SampleRate returns the generator's sample rate.
func (g *Generator) SampleRate() float64 { return g.sampleRate }

// Sine generates samples of a sine at freqHz with peak amplitude. The phase
// is computed in float64.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float32, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("signal: sine samples must be > 0: %d", samples)
	}
	if freqHz < 0 || freqHz >= g.sampleRate/2 {
		return nil, fmt.Errorf("signal: sine frequency must be in [0, %g): %g", g.sampleRate/2, freqHz)
	}

	out := make([]float32, samples)
	step := 2 * math.Pi * freqHz / g.sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}

	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float32, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("signal: noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("signal: noise amplitude must be >= 0: %f", amplitude)
	}

	out := make([]float32, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}

	return out, nil
}

// SnapToBin returns the frequency closest to freqHz that completes a whole
// number of cycles in size samples, so an FFT of that length sees no
// leakage. The result is at least one bin.
func (g *Generator) SnapToBin(freqHz float64, size int) float64 {
	binHz := g.sampleRate / float64(size)
	bin := math.Max(1, math.Round(freqHz/binHz))

	return bin * binHz
}

// Peak returns the largest absolute sample value of data.
func Peak(data ...[]float32) float64 {
	peak := 0.0
	for _, ch := range data {
		for _, v := range ch {
			peak = math.Max(peak, math.Abs(float64(v)))
		}
	}

	return peak
}
