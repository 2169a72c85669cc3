package core

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidSampleRate indicates a non-positive or non-finite sample rate.
	ErrInvalidSampleRate = errors.New("core: invalid sample rate")
	// ErrInvalidBlockSize indicates a non-positive maximum block size.
	ErrInvalidBlockSize = errors.New("core: invalid block size")
	// ErrInvalidChannels indicates a non-positive channel count.
	ErrInvalidChannels = errors.New("core: invalid channel count")
	// ErrInvalidFactor indicates an unsupported oversampling factor.
	ErrInvalidFactor = errors.New("core: invalid oversampling factor")
)

// Factor is an integer oversampling factor. Only [Factor4x] and [Factor8x]
// are supported.
type Factor int

const (
	// Factor4x is the low-latency default path (two half-band stages).
	Factor4x Factor = 4
	// Factor8x is the high-quality path (three half-band stages). Offline
	// rendering always uses it.
	Factor8x Factor = 8
)

// Valid reports whether f is a supported factor.
func (f Factor) Valid() bool {
	return f == Factor4x || f == Factor8x
}

// Stages returns the number of cascaded 2x stages needed for f, or 0 when f
// is not supported.
func (f Factor) Stages() int {
	switch f {
	case Factor4x:
		return 2
	case Factor8x:
		return 3
	default:
		return 0
	}
}

func (f Factor) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Factor(%d)", int(f))
	}

	return fmt.Sprintf("%dx", int(f))
}

// ProcessingConfig describes one prepare session. It is immutable for the
// lifetime of that session; changing any field requires a new prepare call on
// every component that consumed it.
type ProcessingConfig struct {
	SampleRate   float64
	MaxBlockSize int
	Channels     int
	Factor       Factor
}

// ProcessorOption mutates a ProcessingConfig.
type ProcessorOption func(*ProcessingConfig)

// DefaultProcessingConfig returns a stereo 48 kHz configuration with the
// low-latency factor.
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		SampleRate:   48000,
		MaxBlockSize: 1024,
		Channels:     2,
		Factor:       Factor4x,
	}
}

// WithSampleRate sets the base sample rate. Values are not filtered;
// [ProcessingConfig.Validate] rejects unusable ones.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessingConfig) {
		cfg.SampleRate = sampleRate
	}
}

// WithMaxBlockSize sets the largest block, in base-rate samples, that will be
// passed to processing calls.
func WithMaxBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessingConfig) {
		cfg.MaxBlockSize = blockSize
	}
}

// WithChannels sets the channel count.
func WithChannels(channels int) ProcessorOption {
	return func(cfg *ProcessingConfig) {
		cfg.Channels = channels
	}
}

// WithFactor sets the oversampling factor.
func WithFactor(f Factor) ProcessorOption {
	return func(cfg *ProcessingConfig) {
		cfg.Factor = f
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessingConfig {
	cfg := DefaultProcessingConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate checks every field of cfg.
func (cfg ProcessingConfig) Validate() error {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRate, cfg.SampleRate)
	}

	if cfg.MaxBlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, cfg.MaxBlockSize)
	}

	if cfg.Channels <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, cfg.Channels)
	}

	if !cfg.Factor.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidFactor, int(cfg.Factor))
	}

	return nil
}

// OversampledRate returns the sample rate seen by processing that runs
// between upsampling and downsampling.
func (cfg ProcessingConfig) OversampledRate() float64 {
	return cfg.SampleRate * float64(cfg.Factor)
}

// OversampledBlockSize returns the largest block at the oversampled rate.
func (cfg ProcessingConfig) OversampledBlockSize() int {
	return cfg.MaxBlockSize * int(cfg.Factor)
}
