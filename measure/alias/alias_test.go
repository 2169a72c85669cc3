package alias

import (
	"errors"
	"math"
	"testing"
)

const (
	testRate = 48000.0
	testSize = 8192
)

func binFreq(bin int) float64 {
	return float64(bin) * testRate / testSize
}

func tone(components map[int]float64) []float64 {
	out := make([]float64, testSize)
	for bin, amp := range components {
		step := 2 * math.Pi * float64(bin) / testSize
		for i := range out {
			out[i] += amp * math.Sin(step*float64(i))
		}
	}

	return out
}

func TestAnalyzePureTone(t *testing.T) {
	res, err := Analyze(tone(map[int]float64{853: 1}), Config{SampleRate: testRate})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if math.Abs(res.FundamentalFreq-binFreq(853)) > 1e-9 {
		t.Fatalf("fundamental = %f, want %f", res.FundamentalFreq, binFreq(853))
	}
	if res.AliasRatioDB > -200 {
		t.Fatalf("pure tone alias ratio = %.1f dB", res.AliasRatioDB)
	}
	if res.THDdB > -200 {
		t.Fatalf("pure tone THD = %.1f dB", res.THDdB)
	}
	if res.Harmonics != 3 {
		t.Fatalf("harmonics in band = %d, want 3", res.Harmonics)
	}
}

func TestAnalyzeSeparatesHarmonicsFromAliases(t *testing.T) {
	sig := tone(map[int]float64{
		853:  1,
		2559: 0.01,  // 3rd harmonic
		2221: 0.001, // folded 7th harmonic
	})

	res, err := Analyze(sig, Config{SampleRate: testRate, FundamentalFreq: binFreq(853)})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if math.Abs(res.THD-0.01) > 1e-9 {
		t.Fatalf("THD = %.12f, want 0.01", res.THD)
	}
	if math.Abs(res.THDdB+40) > 1e-6 {
		t.Fatalf("THDdB = %f, want -40", res.THDdB)
	}
	if math.Abs(res.AliasRatioDB+60) > 1e-6 {
		t.Fatalf("AliasRatioDB = %f, want -60", res.AliasRatioDB)
	}
	if math.Abs(res.PeakAliasFreq-binFreq(2221)) > 1e-9 {
		t.Fatalf("PeakAliasFreq = %f, want %f", res.PeakAliasFreq, binFreq(2221))
	}
}

func TestAnalyzeFindsStrongestBin(t *testing.T) {
	res, err := Analyze(tone(map[int]float64{300: 0.2, 1000: 0.9}), Config{SampleRate: testRate})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if res.FundamentalFreq != binFreq(1000) {
		t.Fatalf("fundamental = %f, want %f", res.FundamentalFreq, binFreq(1000))
	}
	if math.Abs(res.AliasRatioDB-20*math.Log10(0.2/0.9)) > 1e-6 {
		t.Fatalf("AliasRatioDB = %f", res.AliasRatioDB)
	}
}

func TestAnalyzeNonCoherentToneStaysClean(t *testing.T) {
	sig := make([]float64, testSize)
	for i := range sig {
		sig[i] = math.Sin(2 * math.Pi * 997.3 * float64(i) / testRate)
	}

	res, err := Analyze(sig, Config{SampleRate: testRate})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.AliasRatioDB > -70 {
		t.Fatalf("window leakage %.1f dB above -70 dB", res.AliasRatioDB)
	}
}

func TestCalculateFromPowerKnownSpectrum(t *testing.T) {
	power := make([]float64, 1025)
	power[100] = 1
	power[200] = 1e-2
	power[333] = 1e-4

	res, err := NewCalculator(Config{SampleRate: 2048, CaptureBins: 1, RangeLowerFreq: 1}).
		CalculateFromPower(power)
	if err != nil {
		t.Fatalf("CalculateFromPower() error = %v", err)
	}

	if res.FundamentalFreq != 100 {
		t.Fatalf("fundamental = %f, want 100", res.FundamentalFreq)
	}
	if math.Abs(res.THD-0.1) > 1e-12 {
		t.Fatalf("THD = %f, want 0.1", res.THD)
	}
	if math.Abs(res.AliasRatioDB+40) > 1e-9 {
		t.Fatalf("AliasRatioDB = %f, want -40", res.AliasRatioDB)
	}
	if res.PeakAliasFreq != 333 || math.Abs(res.PeakAliasDB+40) > 1e-9 {
		t.Fatalf("peak alias %f Hz at %f dB", res.PeakAliasFreq, res.PeakAliasDB)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	if _, err := Analyze(make([]float64, 10), Config{SampleRate: testRate}); !errors.Is(err, ErrSignalTooShort) {
		t.Fatalf("short signal error = %v", err)
	}
	if _, err := Analyze(make([]float64, 128), Config{}); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("zero rate error = %v", err)
	}
	if _, err := Analyze(make([]float64, 128), Config{SampleRate: testRate}); !errors.Is(err, ErrNoFundamental) {
		t.Fatalf("silent signal error = %v", err)
	}
	if _, err := Analyze(tone(map[int]float64{853: 1}), Config{SampleRate: testRate, FundamentalFreq: 30000}); !errors.Is(err, ErrNoFundamental) {
		t.Fatalf("out of band fundamental error = %v", err)
	}
}

func TestBlackmanHarrisPeriodic(t *testing.T) {
	w := blackmanHarris(16)
	if math.Abs(w[0]-(0.35875-0.48829+0.14128-0.01168)) > 1e-12 {
		t.Fatalf("w[0] = %g", w[0])
	}
	if math.Abs(w[8]-1) > 1e-12 {
		t.Fatalf("w[n/2] = %g, want 1", w[8])
	}
	for i := 1; i < 8; i++ {
		if math.Abs(w[i]-w[16-i]) > 1e-12 {
			t.Fatalf("window not periodic-symmetric at %d", i)
		}
	}
}

func BenchmarkAnalyze(b *testing.B) {
	sig := tone(map[int]float64{853: 1, 2559: 0.01})
	cfg := Config{SampleRate: testRate}

	b.ReportAllocs()
	for range b.N {
		if _, err := Analyze(sig, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func TestPowerRatioDB(t *testing.T) {
	tests := []struct {
		name     string
		num, den float64
		want     float64
	}{
		{name: "equal", num: 2, den: 2, want: 0},
		{name: "tenth", num: 1, den: 10, want: -10},
		{name: "hundredfold", num: 100, den: 1, want: 20},
		{name: "silent numerator", num: 0, den: 1, want: math.Inf(-1)},
		{name: "silent denominator", num: 1, den: 0, want: math.Inf(-1)},
		{name: "negative", num: -1, den: 1, want: math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := powerRatioDB(tt.num, tt.den)
			if math.IsInf(tt.want, -1) {
				if !math.IsInf(got, -1) {
					t.Fatalf("powerRatioDB(%v, %v) = %v, want -Inf", tt.num, tt.den, got)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("powerRatioDB(%v, %v) = %v, want %v", tt.num, tt.den, got, tt.want)
			}
		})
	}
}
