package oversample

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-mojo/dsp/core"
)

// ErrInvalidStages indicates a stage design that does not match its factor.
var ErrInvalidStages = errors.New("oversample: invalid stage design")

// StageSpec describes the filter of one 2x stage.
type StageSpec struct {
	// Transition is the normalized transition bandwidth in (0, 0.5),
	// relative to the stage's high rate.
	Transition float64
	// AttenuationDB is the minimum stopband attenuation.
	AttenuationDB float64
}

// DefaultStages returns the default stage design for f, stage 0 first.
func DefaultStages(f core.Factor) []StageSpec {
	switch f {
	case core.Factor4x:
		return []StageSpec{
			{Transition: 0.05, AttenuationDB: 65},
			{Transition: 0.13, AttenuationDB: 70},
		}
	case core.Factor8x:
		return []StageSpec{
			{Transition: 0.05, AttenuationDB: 80},
			{Transition: 0.13, AttenuationDB: 85},
			{Transition: 0.20, AttenuationDB: 90},
		}
	default:
		return nil
	}
}

type config struct {
	stages map[core.Factor][]StageSpec
}

// Option configures a Converter.
type Option func(*config)

// WithStages overrides the stage design used when preparing for factor f.
// len(specs) must equal f.Stages(); this is checked by Prepare.
func WithStages(f core.Factor, specs ...StageSpec) Option {
	return func(cfg *config) {
		cfg.stages[f] = append([]StageSpec(nil), specs...)
	}
}

func defaultConfig() config {
	return config{
		stages: map[core.Factor][]StageSpec{
			core.Factor4x: DefaultStages(core.Factor4x),
			core.Factor8x: DefaultStages(core.Factor8x),
		},
	}
}

// Converter upsamples and downsamples multichannel blocks by a fixed integer
// factor. The factor, channel count and maximum block size are fixed by
// Prepare; the filter bank for the factor is built there and swapped in as a
// whole.
//
// A Converter is not safe for concurrent use. Prepare and Reset must not run
// while Upsample or Downsample is in flight.
type Converter struct {
	cfg    config
	params core.ProcessingConfig
	bank   *filterBank
}

// filterBank is the complete filter configuration for one factor.
type filterBank struct {
	factor  core.Factor
	specs   []StageSpec
	coeffs  [][]float32
	up      [][]halfband2x // [channel][stage]
	down    [][]halfband2x
	ping    []float32
	pong    []float32
	latency float64
}

// New creates an unprepared converter.
func New(opts ...Option) *Converter {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Converter{
		cfg:    cfg,
		params: core.DefaultProcessingConfig(),
	}
}

// Prepare designs the filter bank for params.Factor and allocates filter
// state for params.Channels and scratch space for params.MaxBlockSize. All
// history starts at zero.
func (c *Converter) Prepare(params core.ProcessingConfig) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("oversample: %w", err)
	}

	bank, err := newFilterBank(params, c.cfg.stages[params.Factor])
	if err != nil {
		return err
	}

	c.params = params
	c.bank = bank

	return nil
}

func newFilterBank(params core.ProcessingConfig, specs []StageSpec) (*filterBank, error) {
	if len(specs) != params.Factor.Stages() {
		return nil, fmt.Errorf("%w: factor %v needs %d stages, got %d",
			ErrInvalidStages, params.Factor, params.Factor.Stages(), len(specs))
	}

	b := &filterBank{
		factor: params.Factor,
		specs:  append([]StageSpec(nil), specs...),
		coeffs: make([][]float32, len(specs)),
	}

	for s, spec := range specs {
		n, err := HalfbandOrder(spec.AttenuationDB, spec.Transition)
		if err != nil {
			return nil, fmt.Errorf("%w: stage %d: %w", ErrInvalidStages, s, err)
		}

		coeffs64, err := DesignHalfband(n, spec.Transition)
		if err != nil {
			return nil, fmt.Errorf("%w: stage %d: %w", ErrInvalidStages, s, err)
		}

		coeffs := make([]float32, len(coeffs64))
		for i, v := range coeffs64 {
			coeffs[i] = float32(v)
		}
		b.coeffs[s] = coeffs

		// Stage s runs between base*2^s and base*2^(s+1). Up and down each
		// contribute the same delay.
		b.latency += 2 * groupDelayDC(coeffs64) / float64(int(1)<<(s+1))
	}

	b.up = make([][]halfband2x, params.Channels)
	b.down = make([][]halfband2x, params.Channels)
	for ch := range params.Channels {
		b.up[ch] = make([]halfband2x, len(specs))
		b.down[ch] = make([]halfband2x, len(specs))
		for s := range specs {
			b.up[ch][s] = newHalfband2x(b.coeffs[s])
			b.down[ch][s] = newHalfband2x(b.coeffs[s])
		}
	}

	scratch := params.MaxBlockSize * int(params.Factor) / 2
	b.ping = make([]float32, scratch)
	b.pong = make([]float32, scratch)

	return b, nil
}

// Upsample filters and expands every channel of src by Factor() into dst.
// len(dst) and len(src) must equal the prepared channel count, every source
// channel must hold at most MaxBlockSize samples, and dst[ch] must hold
// exactly len(src[ch])*Factor() samples. Violations panic.
func (c *Converter) Upsample(dst, src [][]float32) {
	b := c.mustBank("Upsample")
	c.checkChannels("Upsample", dst, src)

	f := int(b.factor)
	for ch, in := range src {
		if len(in) > c.params.MaxBlockSize {
			panic(fmt.Sprintf("oversample: Upsample block of %d samples exceeds prepared maximum %d",
				len(in), c.params.MaxBlockSize))
		}
		if len(dst[ch]) != len(in)*f {
			panic(fmt.Sprintf("oversample: Upsample channel %d: dst has %d samples, want %d",
				ch, len(dst[ch]), len(in)*f))
		}

		b.upsampleChannel(ch, dst[ch], in)
	}
}

// Downsample filters and decimates every channel of src by Factor() into
// dst. len(src[ch]) must be a multiple of Factor() no larger than
// MaxBlockSize*Factor(), and dst[ch] must hold exactly len(src[ch])/Factor()
// samples. Violations panic.
func (c *Converter) Downsample(dst, src [][]float32) {
	b := c.mustBank("Downsample")
	c.checkChannels("Downsample", dst, src)

	f := int(b.factor)
	for ch, in := range src {
		if len(in)%f != 0 {
			panic(fmt.Sprintf("oversample: Downsample channel %d: %d samples is not a multiple of factor %d",
				ch, len(in), f))
		}
		if len(in) > c.params.MaxBlockSize*f {
			panic(fmt.Sprintf("oversample: Downsample block of %d samples exceeds prepared maximum %d",
				len(in), c.params.MaxBlockSize*f))
		}
		if len(dst[ch]) != len(in)/f {
			panic(fmt.Sprintf("oversample: Downsample channel %d: dst has %d samples, want %d",
				ch, len(dst[ch]), len(in)/f))
		}

		b.downsampleChannel(ch, dst[ch], in)
	}
}

// Reset clears all filter history without releasing memory.
func (c *Converter) Reset() {
	if c.bank == nil {
		return
	}

	for ch := range c.bank.up {
		for s := range c.bank.up[ch] {
			c.bank.up[ch][s].reset()
			c.bank.down[ch][s].reset()
		}
	}
}

// Factor returns the configured oversampling factor. Before the first
// Prepare it reports the default factor.
func (c *Converter) Factor() core.Factor {
	return c.params.Factor
}

// Config returns the configuration passed to the last successful Prepare.
func (c *Converter) Config() core.ProcessingConfig {
	return c.params
}

// Prepared reports whether Prepare has succeeded at least once.
func (c *Converter) Prepared() bool {
	return c.bank != nil
}

// Latency returns the approximate round-trip (up plus down) group delay at
// DC, in base-rate samples.
func (c *Converter) Latency() float64 {
	if c.bank == nil {
		return 0
	}

	return c.bank.latency
}

// Stages returns a copy of the active stage design.
func (c *Converter) Stages() []StageSpec {
	if c.bank == nil {
		return nil
	}

	return append([]StageSpec(nil), c.bank.specs...)
}

// Coefficients returns a copy of the allpass coefficients of stage s.
func (c *Converter) Coefficients(s int) []float32 {
	if c.bank == nil || s < 0 || s >= len(c.bank.coeffs) {
		return nil
	}

	return append([]float32(nil), c.bank.coeffs[s]...)
}

func (c *Converter) mustBank(op string) *filterBank {
	if c.bank == nil {
		panic("oversample: " + op + " called before Prepare")
	}

	return c.bank
}

func (c *Converter) checkChannels(op string, dst, src [][]float32) {
	if len(src) != c.params.Channels || len(dst) != c.params.Channels {
		panic(fmt.Sprintf("oversample: %s channel mismatch: src=%d dst=%d prepared=%d",
			op, len(src), len(dst), c.params.Channels))
	}
}

func (b *filterBank) upsampleChannel(ch int, dst, src []float32) {
	stages := b.up[ch]
	last := len(stages) - 1

	cur := src
	for s := range stages {
		var out []float32
		switch {
		case s == last:
			out = dst
		case s%2 == 0:
			out = b.ping[:2*len(cur)]
		default:
			out = b.pong[:2*len(cur)]
		}

		stages[s].upsample(out, cur)
		cur = out
	}
}

func (b *filterBank) downsampleChannel(ch int, dst, src []float32) {
	stages := b.down[ch]

	cur := src
	for s := len(stages) - 1; s >= 0; s-- {
		var out []float32
		switch {
		case s == 0:
			out = dst
		case s%2 == 0:
			out = b.ping[:len(cur)/2]
		default:
			out = b.pong[:len(cur)/2]
		}

		stages[s].downsample(out, cur)
		cur = out
	}
}
