package mojo

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-mojo/dsp/core"
	"github.com/cwbudde/algo-mojo/dsp/oversample"
	"github.com/cwbudde/algo-mojo/dsp/shaper"
)

const channels = 2

type config struct {
	logger     *slog.Logger
	params     *ParamStore
	convOpts   []oversample.Option
	shaperOpts []shaper.Option
}

// Option configures a Processor.
type Option func(*config)

// WithLogger sets the logger used by Prepare, Reset and state loading. The
// audio path never logs.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithParamStore shares an existing parameter store with the Processor.
func WithParamStore(store *ParamStore) Option {
	return func(cfg *config) {
		if store != nil {
			cfg.params = store
		}
	}
}

// WithConverterOptions passes options to the rate converter.
func WithConverterOptions(opts ...oversample.Option) Option {
	return func(cfg *config) {
		cfg.convOpts = append(cfg.convOpts, opts...)
	}
}

// WithShaperOptions passes options to the shaper.
func WithShaperOptions(opts ...shaper.Option) Option {
	return func(cfg *config) {
		cfg.shaperOpts = append(cfg.shaperOpts, opts...)
	}
}

// Processor is the stereo effect: upsample, shape, downsample, dry/wet mix
// and output gain. Parameters are read from its ParamStore once per block.
type Processor struct {
	logger *slog.Logger
	params *ParamStore
	conv   *oversample.Converter
	shaper *shaper.Shaper

	cfg      core.ProcessingConfig
	offline  bool
	prepared bool

	dry [][]float32
	up  [][]float32

	// Per-block views into caller and scratch buffers.
	io     [][]float32
	upView [][]float32
}

// NewProcessor creates an unprepared Processor.
func NewProcessor(opts ...Option) *Processor {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.params == nil {
		cfg.params = NewParamStore()
	}

	return &Processor{
		logger: cfg.logger,
		params: cfg.params,
		conv:   oversample.New(cfg.convOpts...),
		shaper: shaper.New(cfg.shaperOpts...),
		io:     make([][]float32, channels),
		upView: make([][]float32, channels),
	}
}

// Params returns the live parameter store.
func (p *Processor) Params() *ParamStore { return p.params }

// Prepare configures the processor for sampleRate and blocks of at most
// maxBlockSize samples per channel. The factor follows the current quality
// mode, or is 8x when offline is set. All buffers are allocated here.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize int, offline bool) error {
	mode := p.params.Quality()
	cfg := core.ProcessingConfig{
		SampleRate:   sampleRate,
		MaxBlockSize: maxBlockSize,
		Channels:     channels,
		Factor:       FactorFor(mode, offline),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("mojo: %w", err)
	}

	if err := p.conv.Prepare(cfg); err != nil {
		return fmt.Errorf("mojo: prepare converter: %w", err)
	}
	if err := p.shaper.Prepare(cfg.OversampledRate(), channels); err != nil {
		return fmt.Errorf("mojo: prepare shaper: %w", err)
	}

	p.cfg = cfg
	p.offline = offline
	p.dry = core.NewChannels(channels, cfg.MaxBlockSize)
	p.up = core.NewChannels(channels, cfg.OversampledBlockSize())
	p.prepared = true

	p.logger.Info("processor prepared",
		"sample_rate", cfg.SampleRate,
		"max_block", cfg.MaxBlockSize,
		"factor", cfg.Factor.String(),
		"quality", mode.String(),
		"offline", offline,
		"latency_samples", p.conv.Latency(),
	)

	return nil
}

// Reset clears all filter and shaper history.
func (p *Processor) Reset() {
	p.conv.Reset()
	p.shaper.Reset()
	p.logger.Debug("processor reset")
}

// Factor returns the prepared oversampling factor.
func (p *Processor) Factor() core.Factor { return p.conv.Factor() }

// Config returns the configuration of the last successful Prepare.
func (p *Processor) Config() core.ProcessingConfig { return p.cfg }

// Offline reports whether the last Prepare was for offline rendering.
func (p *Processor) Offline() bool { return p.offline }

// Latency returns the approximate processing delay in base-rate samples.
func (p *Processor) Latency() float64 { return p.conv.Latency() }

// NeedsPrepare reports whether the stored quality mode calls for a
// different factor than the prepared one. ProcessBlock keeps running at the
// prepared factor; the host re-prepares outside the audio thread.
func (p *Processor) NeedsPrepare() bool {
	if !p.prepared {
		return true
	}

	return FactorFor(p.params.Quality(), p.offline) != p.conv.Factor()
}

// LoadState decodes a state document into the parameter store.
func (p *Processor) LoadState(data []byte) error {
	if err := p.params.LoadState(data); err != nil {
		p.logger.Warn("state load failed", "error", err)
		return err
	}

	p.logger.Info("state loaded", "quality", p.params.Quality().String(),
		"needs_prepare", p.NeedsPrepare())

	return nil
}

// ProcessBlock processes one stereo block in place. Both channels must have
// the same length, at most the prepared maximum block size.
func (p *Processor) ProcessBlock(left, right []float32) {
	if !p.prepared {
		panic("mojo: ProcessBlock called before Prepare")
	}
	if len(left) != len(right) {
		panic(fmt.Sprintf("mojo: ProcessBlock length mismatch: left=%d right=%d", len(left), len(right)))
	}
	n := len(left)
	if n > p.cfg.MaxBlockSize {
		panic(fmt.Sprintf("mojo: ProcessBlock block of %d samples exceeds prepared maximum %d",
			n, p.cfg.MaxBlockSize))
	}
	if n == 0 {
		return
	}

	params := p.params.Snapshot()

	copy(p.dry[0], left)
	copy(p.dry[1], right)

	f := int(p.conv.Factor())
	p.io[0], p.io[1] = left, right
	p.upView[0], p.upView[1] = p.up[0][:n*f], p.up[1][:n*f]

	p.conv.Upsample(p.upView, p.io)
	p.shaper.ProcessStereo(p.upView[0], p.upView[1], params.Shaper())
	p.conv.Downsample(p.io, p.upView)

	gain := params.OutputGain()
	mixInto(left, p.dry[0][:n], params.Mix, gain)
	mixInto(right, p.dry[1][:n], params.Mix, gain)

	p.io[0], p.io[1] = nil, nil
}
