package mojo

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-mojo/dsp/core"
	"github.com/cwbudde/algo-mojo/dsp/shaper"
)

// Output gain range in dB.
const (
	MinOutputDB = -12
	MaxOutputDB = 12
)

// Params is a complete set of effect controls.
type Params struct {
	Drive      float32
	Character  float32
	Saturation float32
	Presence   float32
	// Mix is the wet share of the output, 0 is fully dry.
	Mix float32
	// OutputDB is the output gain in [MinOutputDB, MaxOutputDB].
	OutputDB float32
	Quality  QualityMode
}

// DefaultParams returns the factory defaults.
func DefaultParams() Params {
	return Params{
		Drive:      0.5,
		Character:  0.5,
		Saturation: 0.5,
		Presence:   0.5,
		Mix:        1,
		OutputDB:   0,
		Quality:    Live4x,
	}
}

// Shaper returns the shaping subset of p.
func (p Params) Shaper() shaper.Params {
	return shaper.Params{
		Drive:      p.Drive,
		Character:  p.Character,
		Saturation: p.Saturation,
		Presence:   p.Presence,
	}
}

// Validate reports the first out-of-range field.
func (p Params) Validate() error {
	if err := p.Shaper().Validate(); err != nil {
		return err
	}
	if !core.IsFinite32(p.Mix) || p.Mix < 0 || p.Mix > 1 {
		return fmt.Errorf("mojo: mix must be in [0, 1]: %g", p.Mix)
	}
	if !core.IsFinite32(p.OutputDB) || p.OutputDB < MinOutputDB || p.OutputDB > MaxOutputDB {
		return fmt.Errorf("mojo: output gain must be in [%d, %d] dB: %g", MinOutputDB, MaxOutputDB, p.OutputDB)
	}
	if !p.Quality.Valid() {
		return fmt.Errorf("mojo: invalid quality mode %d", int(p.Quality))
	}

	return nil
}

// Clamp limits every field to its range. Unknown quality modes become Live4x.
func (p Params) Clamp() Params {
	s := p.Shaper().Clamp()
	out := Params{
		Drive:      s.Drive,
		Character:  s.Character,
		Saturation: s.Saturation,
		Presence:   s.Presence,
		Mix:        core.Clamp32(p.Mix, 0, 1),
		OutputDB:   core.Clamp32(p.OutputDB, MinOutputDB, MaxOutputDB),
		Quality:    p.Quality,
	}
	if !out.Quality.Valid() {
		out.Quality = Live4x
	}

	return out
}

// OutputGain returns OutputDB as a linear factor.
func (p Params) OutputGain() float32 {
	return float32(core.DBToLinear(float64(p.OutputDB)))
}

// atomicFloat32 stores a float32 as its bit pattern.
type atomicFloat32 struct {
	bits atomic.Uint32
}

func (a *atomicFloat32) Load() float32 {
	return math.Float32frombits(a.bits.Load())
}

func (a *atomicFloat32) Store(v float32) {
	a.bits.Store(math.Float32bits(v))
}

// ParamStore holds the live parameter values. Setters clamp and may be
// called from any goroutine; Snapshot never blocks and never allocates.
// Fields are independent, so a snapshot taken during a multi-field update
// may mix old and new values.
type ParamStore struct {
	drive      atomicFloat32
	character  atomicFloat32
	saturation atomicFloat32
	presence   atomicFloat32
	mix        atomicFloat32
	outputDB   atomicFloat32
	quality    atomic.Int32
}

// NewParamStore returns a store holding DefaultParams.
func NewParamStore() *ParamStore {
	s := &ParamStore{}
	s.Set(DefaultParams())

	return s
}

// Snapshot reads every parameter once.
func (s *ParamStore) Snapshot() Params {
	return Params{
		Drive:      s.drive.Load(),
		Character:  s.character.Load(),
		Saturation: s.saturation.Load(),
		Presence:   s.presence.Load(),
		Mix:        s.mix.Load(),
		OutputDB:   s.outputDB.Load(),
		Quality:    QualityMode(s.quality.Load()),
	}
}

// Set stores all of p after clamping.
func (s *ParamStore) Set(p Params) {
	p = p.Clamp()
	s.drive.Store(p.Drive)
	s.character.Store(p.Character)
	s.saturation.Store(p.Saturation)
	s.presence.Store(p.Presence)
	s.mix.Store(p.Mix)
	s.outputDB.Store(p.OutputDB)
	s.quality.Store(int32(p.Quality))
}

// SetDrive stores the drive amount, limited to [0, 1].
func (s *ParamStore) SetDrive(v float32) { s.drive.Store(core.Clamp32(v, 0, 1)) }

// SetCharacter stores the character amount, limited to [0, 1].
func (s *ParamStore) SetCharacter(v float32) { s.character.Store(core.Clamp32(v, 0, 1)) }

// SetSaturation stores the saturation amount, limited to [0, 1].
func (s *ParamStore) SetSaturation(v float32) { s.saturation.Store(core.Clamp32(v, 0, 1)) }

// SetPresence stores the presence amount, limited to [0, 1].
func (s *ParamStore) SetPresence(v float32) { s.presence.Store(core.Clamp32(v, 0, 1)) }

// SetMix stores the wet share, limited to [0, 1]. NaN stores 0.
func (s *ParamStore) SetMix(v float32) { s.mix.Store(core.Clamp32(v, 0, 1)) }

// SetOutputDB stores the output gain, limited to [MinOutputDB, MaxOutputDB].
func (s *ParamStore) SetOutputDB(v float32) {
	s.outputDB.Store(core.Clamp32(v, MinOutputDB, MaxOutputDB))
}

// SetQuality stores mode. Unknown modes are ignored.
func (s *ParamStore) SetQuality(mode QualityMode) {
	if mode.Valid() {
		s.quality.Store(int32(mode))
	}
}

// Quality returns the stored quality mode.
func (s *ParamStore) Quality() QualityMode {
	return QualityMode(s.quality.Load())
}
