package alias

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-mojo/dsp/core"
)

const (
	defaultRangeLowerHz = 20.0
	defaultRangeUpperHz = 20000.0
	// Main-lobe half width of the 4-term Blackman-Harris window in bins.
	defaultCaptureBins = 4
	minSignalLength    = 64
)

var (
	// ErrSignalTooShort is returned for signals shorter than 64 samples.
	ErrSignalTooShort = errors.New("alias: signal too short")
	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("alias: invalid sample rate")
	// ErrNoFundamental is returned when the fundamental carries no energy.
	ErrNoFundamental = errors.New("alias: no fundamental")
)

// Config holds analysis parameters.
type Config struct {
	SampleRate float64
	// FundamentalFreq pins the fundamental. Zero selects the strongest bin
	// in range.
	FundamentalFreq float64
	// RangeLowerFreq and RangeUpperFreq bound the analyzed band. Defaults
	// are 20 Hz and 20 kHz, limited to Nyquist.
	RangeLowerFreq float64
	RangeUpperFreq float64
	// CaptureBins is the number of bins on each side of a component that
	// belong to it. Defaults to the window's main-lobe half width.
	CaptureBins int
}

// Result holds analysis results. Powers are window-scaled bin power sums and
// are only meaningful relative to each other.
type Result struct {
	FundamentalFreq  float64
	FundamentalPower float64
	HarmonicPower    float64
	AliasPower       float64
	// Harmonics counted inside the analyzed band, excluding the fundamental.
	Harmonics int
	// THD is the harmonic to fundamental amplitude ratio.
	THD   float64
	THDdB float64
	// AliasRatioDB is AliasPower relative to FundamentalPower.
	AliasRatioDB float64
	// PeakAliasFreq is the strongest bin that belongs to no component and
	// PeakAliasDB its power relative to the fundamental's peak bin.
	PeakAliasFreq float64
	PeakAliasDB   float64
}

// Calculator evaluates power spectra.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with defaults applied to cfg.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: normalizeConfig(cfg)}
}

// Analyze windows signal with a periodic 4-term Blackman-Harris window,
// transforms it and evaluates the power spectrum. The FFT size is the next
// power of two; a signal whose length is a power of two and which holds a
// whole number of fundamental periods is measured without leakage.
func Analyze(signal []float64, cfg Config) (Result, error) {
	return NewCalculator(cfg).AnalyzeSignal(signal)
}

// AnalyzeSignal is the method form of [Analyze].
func (c *Calculator) AnalyzeSignal(signal []float64) (Result, error) {
	if len(signal) < minSignalLength {
		return Result{}, fmt.Errorf("%w: %d samples", ErrSignalTooShort, len(signal))
	}
	if c.cfg.SampleRate <= 0 || math.IsNaN(c.cfg.SampleRate) || math.IsInf(c.cfg.SampleRate, 0) {
		return Result{}, fmt.Errorf("%w: %g", ErrInvalidSampleRate, c.cfg.SampleRate)
	}

	fftSize := nextPowerOf2(len(signal))

	windowed := make([]float64, len(signal))
	copy(windowed, signal)
	vecmath.MulBlockInPlace(windowed, blackmanHarris(len(signal)))

	in := make([]complex128, fftSize)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}, fmt.Errorf("alias: fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Result{}, fmt.Errorf("alias: fft: %w", err)
	}

	binCount := fftSize/2 + 1
	re := make([]float64, binCount)
	im := make([]float64, binCount)
	for i := range binCount {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	power := make([]float64, binCount)
	vecmath.Power(power, re, im)

	return c.calculate(power, fftSize)
}

// CalculateFromPower evaluates a power spectrum holding the non-negative
// frequency bins [0..Nyquist] of an FFT of size 2*(len(power)-1).
func (c *Calculator) CalculateFromPower(power []float64) (Result, error) {
	if len(power) < 2 {
		return Result{}, fmt.Errorf("%w: %d bins", ErrSignalTooShort, len(power))
	}
	if c.cfg.SampleRate <= 0 {
		return Result{}, fmt.Errorf("%w: %g", ErrInvalidSampleRate, c.cfg.SampleRate)
	}

	return c.calculate(power, 2*(len(power)-1))
}

//nolint:funlen
func (c *Calculator) calculate(power []float64, fftSize int) (Result, error) {
	cfg := c.cfg
	maxBin := len(power) - 1
	binHz := cfg.SampleRate / float64(fftSize)

	lowerBin := clampInt(int(math.Ceil(cfg.RangeLowerFreq/binHz)), 1, maxBin)
	upperBin := clampInt(int(math.Floor(cfg.RangeUpperFreq/binHz)), lowerBin, maxBin)
	band := power[lowerBin : upperBin+1]

	fundFreq := cfg.FundamentalFreq
	if fundFreq <= 0 {
		fundFreq = float64(lowerBin+floats.MaxIdx(band)) * binHz
	}

	fundBin := int(math.Round(fundFreq / binHz))
	if fundBin < lowerBin || fundBin > upperBin {
		return Result{}, fmt.Errorf("%w: %g Hz outside analyzed band", ErrNoFundamental, fundFreq)
	}

	capture := cfg.CaptureBins
	claimed := make([]bool, len(power))

	claim := func(bin int) float64 {
		lo := max(bin-capture, lowerBin)
		hi := min(bin+capture, upperBin)
		if lo > hi {
			return 0
		}

		for i := lo; i <= hi; i++ {
			claimed[i] = true
		}

		return floats.Sum(power[lo : hi+1])
	}

	res := Result{FundamentalFreq: fundFreq}

	res.FundamentalPower = claim(fundBin)
	if res.FundamentalPower <= 0 {
		return Result{}, ErrNoFundamental
	}

	for k := 2; ; k++ {
		bin := int(math.Round(float64(k) * fundFreq / binHz))
		if bin-capture > upperBin {
			break
		}

		res.HarmonicPower += claim(bin)
		if bin <= upperBin {
			res.Harmonics++
		}
	}

	peakBin := -1
	for i := lowerBin; i <= upperBin; i++ {
		if claimed[i] {
			continue
		}

		res.AliasPower += power[i]
		if peakBin < 0 || power[i] > power[peakBin] {
			peakBin = i
		}
	}

	fundPeak := power[fundBin]
	res.THD = math.Sqrt(res.HarmonicPower / res.FundamentalPower)
	res.THDdB = powerRatioDB(res.HarmonicPower, res.FundamentalPower)
	res.AliasRatioDB = powerRatioDB(res.AliasPower, res.FundamentalPower)
	res.PeakAliasDB = math.Inf(-1)
	if peakBin >= 0 {
		res.PeakAliasFreq = float64(peakBin) * binHz
		res.PeakAliasDB = powerRatioDB(power[peakBin], fundPeak)
	}

	return res, nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.RangeLowerFreq <= 0 {
		cfg.RangeLowerFreq = defaultRangeLowerHz
	}

	if cfg.RangeUpperFreq <= 0 {
		cfg.RangeUpperFreq = defaultRangeUpperHz
	}

	if nyquist := cfg.SampleRate / 2; nyquist > 0 && cfg.RangeUpperFreq > nyquist {
		cfg.RangeUpperFreq = nyquist
	}

	if cfg.RangeUpperFreq < cfg.RangeLowerFreq {
		cfg.RangeUpperFreq = cfg.RangeLowerFreq
	}

	if cfg.CaptureBins <= 0 {
		cfg.CaptureBins = defaultCaptureBins
	}

	return cfg
}

// blackmanHarris returns the periodic 4-term Blackman-Harris window. A
// bin-centered tone leaks into exactly three bins on either side.
func blackmanHarris(n int) []float64 {
	const (
		a0 = 0.35875
		a1 = 0.48829
		a2 = 0.14128
		a3 = 0.01168
	)

	w := make([]float64, n)
	step := 2 * math.Pi / float64(n)
	for i := range w {
		x := step * float64(i)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x) - a3*math.Cos(3*x)
	}

	return w
}

func powerRatioDB(num, den float64) float64 {
	if num <= 0 || den <= 0 {
		return math.Inf(-1)
	}

	return core.LinearPowerToDB(num / den)
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}

	if val > hi {
		return hi
	}

	return val
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
