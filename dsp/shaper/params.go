package shaper

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-mojo/dsp/core"
)

const (
	driveScale     = 10
	characterScale = 0.9
	presenceScale  = 0.6
)

// Params are the per-block shaping controls. All fields are in [0, 1].
type Params struct {
	Drive      float32
	Character  float32
	Saturation float32
	Presence   float32
}

// DefaultParams returns the factory defaults (all controls at 0.5).
func DefaultParams() Params {
	return Params{Drive: 0.5, Character: 0.5, Saturation: 0.5, Presence: 0.5}
}

// Validate reports the first field outside [0, 1] or not finite.
func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"drive", p.Drive},
		{"character", p.Character},
		{"saturation", p.Saturation},
		{"presence", p.Presence},
	} {
		if !core.IsFinite32(f.v) || f.v < 0 || f.v > 1 {
			return fmt.Errorf("shaper: %s must be in [0, 1]: %g", f.name, f.v)
		}
	}

	return nil
}

// Clamp returns p with every field limited to [0, 1]. NaN becomes 0.
func (p Params) Clamp() Params {
	return Params{
		Drive:      core.Clamp32(p.Drive, 0, 1),
		Character:  core.Clamp32(p.Character, 0, 1),
		Saturation: core.Clamp32(p.Saturation, 0, 1),
		Presence:   core.Clamp32(p.Presence, 0, 1),
	}
}

// SaturationAmount returns the tanh input scale s = 0.5*saturation + 0.5.
// For saturation in [0, 1] it lies in [0.5, 1], so tanh(s) is never zero.
func (p Params) SaturationAmount() float32 {
	return p.Saturation*0.5 + 0.5
}

// curve holds the per-block constants derived from Params.
type curve struct {
	driveGain float32
	character float32
	satAmount float32
	satNorm   float32
	presence  float32
}

func newCurve(p Params) curve {
	s := p.SaturationAmount()

	return curve{
		driveGain: 1 + p.Drive*driveScale,
		character: p.Character * characterScale,
		satAmount: s,
		satNorm:   tanh32(s),
		presence:  p.Presence * presenceScale,
	}
}

// transfer applies drive, character and saturation.
func (c curve) transfer(x float32) float32 {
	x *= c.driveGain
	x += c.character * sin32(x)

	return tanh32(x*c.satAmount) / c.satNorm
}

// emphasize applies the presence stage and updates st.
func (c curve) emphasize(x float32, st *ChannelState) float32 {
	hf := x - st.LastOutput
	x += hf * c.presence
	st.LastOutput = core.FlushDenormals32(x)

	return x
}

// Transfer evaluates the stateless part of the curve (drive, character,
// saturation) for one sample. Its magnitude never exceeds
// 1/tanh(p.SaturationAmount()).
func Transfer(x float32, p Params) float32 {
	return newCurve(p).transfer(x)
}

// Bound returns 1/tanh(p.SaturationAmount()), the largest magnitude
// [Transfer] can produce.
func Bound(p Params) float32 {
	return 1 / tanh32(p.SaturationAmount())
}

func sin32(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

func tanh32(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}
