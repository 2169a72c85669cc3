package shaper

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-mojo/dsp/core"
)

// ChannelState is the history one channel carries across samples and blocks.
type ChannelState struct {
	// LastOutput is the previous post-emphasis output sample.
	LastOutput float32
}

type config struct {
	muteNonFinite bool
}

// Option configures a Shaper.
type Option func(*config)

// WithMuteNonFinite replaces NaN or infinite output samples by 0 and clears
// the channel history when one occurs. Off by default, in which case
// non-finite input propagates.
func WithMuteNonFinite(enabled bool) Option {
	return func(cfg *config) {
		cfg.muteNonFinite = enabled
	}
}

// Shaper applies the saturation curve to one or more channels in place.
// It is not safe for concurrent use.
type Shaper struct {
	sampleRate    float64
	channels      []ChannelState
	muteNonFinite bool
}

// New creates an unprepared Shaper.
func New(opts ...Option) *Shaper {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Shaper{muteNonFinite: cfg.muteNonFinite}
}

// Prepare allocates one zeroed ChannelState per channel. sampleRate is the
// rate the Shaper runs at, i.e. the oversampled rate.
func (s *Shaper) Prepare(sampleRate float64, channels int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("shaper: sample rate must be > 0 and finite: %f", sampleRate)
	}
	if channels <= 0 {
		return fmt.Errorf("shaper: channel count must be > 0: %d", channels)
	}

	s.sampleRate = sampleRate
	s.channels = make([]ChannelState, channels)

	return nil
}

// Reset zeroes every channel's history.
func (s *Shaper) Reset() {
	for i := range s.channels {
		s.channels[i] = ChannelState{}
	}
}

// SampleRate returns the rate passed to Prepare.
func (s *Shaper) SampleRate() float64 { return s.sampleRate }

// Channels returns the prepared channel count.
func (s *Shaper) Channels() int { return len(s.channels) }

// State returns the history of channel ch.
func (s *Shaper) State(ch int) ChannelState {
	s.checkChannel(ch)
	return s.channels[ch]
}

// SetState overwrites the history of channel ch.
func (s *Shaper) SetState(ch int, st ChannelState) {
	s.checkChannel(ch)
	s.channels[ch] = st
}

// ProcessStereo shapes left and right in place with the same parameters and
// independent per-channel history. The Shaper must have been prepared for
// exactly two channels and both slices must have the same length.
func (s *Shaper) ProcessStereo(left, right []float32, p Params) {
	if len(s.channels) != 2 {
		panic(fmt.Sprintf("shaper: ProcessStereo on a Shaper prepared for %d channels", len(s.channels)))
	}
	if len(left) != len(right) {
		panic(fmt.Sprintf("shaper: ProcessStereo length mismatch: left=%d right=%d", len(left), len(right)))
	}

	c := newCurve(p)
	l, r := &s.channels[0], &s.channels[1]

	for i := range left {
		left[i] = s.step(c, left[i], l)
		right[i] = s.step(c, right[i], r)
	}
}

// ProcessChannel shapes buf in place using the history of channel ch.
func (s *Shaper) ProcessChannel(ch int, buf []float32, p Params) {
	s.checkChannel(ch)

	c := newCurve(p)
	st := &s.channels[ch]
	for i := range buf {
		buf[i] = s.step(c, buf[i], st)
	}
}

// ProcessSample shapes one sample of channel ch. Block processing should use
// ProcessStereo or ProcessChannel, which derive the curve once per block.
func (s *Shaper) ProcessSample(ch int, x float32, p Params) float32 {
	s.checkChannel(ch)
	return s.step(newCurve(p), x, &s.channels[ch])
}

func (s *Shaper) step(c curve, x float32, st *ChannelState) float32 {
	y := c.emphasize(c.transfer(x), st)

	if s.muteNonFinite && !core.IsFinite32(y) {
		st.LastOutput = 0
		return 0
	}

	return y
}

func (s *Shaper) checkChannel(ch int) {
	if ch < 0 || ch >= len(s.channels) {
		panic(fmt.Sprintf("shaper: channel %d out of range [0, %d)", ch, len(s.channels)))
	}
}
