package oversample

import (
	"math"
	"math/cmplx"
	"strings"
	"testing"

	"github.com/cwbudde/algo-mojo/dsp/core"
	"github.com/cwbudde/algo-mojo/internal/testutil"
)

func prepared(t *testing.T, f core.Factor, channels, maxBlock int) *Converter {
	t.Helper()

	c := New()
	err := c.Prepare(core.ApplyProcessorOptions(
		core.WithSampleRate(48000),
		core.WithMaxBlockSize(maxBlock),
		core.WithChannels(channels),
		core.WithFactor(f),
	))
	if err != nil {
		t.Fatalf("Prepare(%v) error = %v", f, err)
	}

	return c
}

// toneAmplitude estimates the amplitude of a bin-aligned sinusoid at freq.
func toneAmplitude(x []float32, freq, rate float64) float64 {
	var acc complex128
	w := -2 * math.Pi * freq / rate
	for n, v := range x {
		acc += complex(float64(v), 0) * cmplx.Exp(complex(0, w*float64(n)))
	}

	return 2 * cmplx.Abs(acc) / float64(len(x))
}

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", contains)
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, contains) {
			t.Fatalf("panic %q does not contain %q", msg, contains)
		}
	}()

	fn()
}

func TestPrepareRejectsInvalidConfig(t *testing.T) {
	c := New()
	cfg := core.DefaultProcessingConfig()
	cfg.Factor = 2
	if err := c.Prepare(cfg); err == nil {
		t.Fatal("expected error for factor 2")
	}
	if c.Prepared() {
		t.Fatal("converter reports prepared after failed Prepare")
	}
}

func TestPrepareRejectsStageMismatch(t *testing.T) {
	c := New(WithStages(core.Factor8x, StageSpec{Transition: 0.05, AttenuationDB: 60}))
	cfg := core.ApplyProcessorOptions(core.WithFactor(core.Factor8x))
	if err := c.Prepare(cfg); err == nil {
		t.Fatal("expected error for 1-stage design at 8x")
	}
}

func TestRoundTripSampleCounts(t *testing.T) {
	for _, f := range []core.Factor{core.Factor4x, core.Factor8x} {
		for _, n := range []int{0, 1, 17, 64} {
			c := prepared(t, f, 2, 64)

			src := core.NewChannels(2, n)
			up := core.NewChannels(2, n*int(f))
			down := core.NewChannels(2, n)

			c.Upsample(up, src)
			c.Downsample(down, up)

			if len(up[0]) != n*int(f) || len(down[1]) != n {
				t.Fatalf("factor %v n=%d: up=%d down=%d", f, n, len(up[0]), len(down[1]))
			}
		}
	}
}

func TestUnityGainAtDC(t *testing.T) {
	for _, f := range []core.Factor{core.Factor4x, core.Factor8x} {
		c := prepared(t, f, 1, 256)

		src := [][]float32{testutil.DC32(0.5, 256)}
		up := core.NewChannels(1, 256*int(f))
		down := core.NewChannels(1, 256)

		for range 4 {
			c.Upsample(up, src)
			c.Downsample(down, up)
		}

		testutil.RequireSliceNearlyEqual32(t, up[0][len(up[0])-16:], testutil.DC32(0.5, 16), 1e-4)
		testutil.RequireSliceNearlyEqual32(t, down[0][len(down[0])-16:], testutil.DC32(0.5, 16), 1e-4)
	}
}

func TestUpsampleRejectsImages(t *testing.T) {
	const (
		rate = 48000.0
		tone = 1000.0
		n    = 4800
	)

	for _, tc := range []struct {
		f       core.Factor
		floorDB float64
	}{
		{core.Factor4x, -60},
		{core.Factor8x, -75},
	} {
		c := prepared(t, tc.f, 1, n)
		sine := testutil.Sine32(tone, rate, 1, 2*n)
		up := core.NewChannels(1, n*int(tc.f))
		highRate := rate * float64(tc.f)

		c.Upsample(up, [][]float32{sine[:n]})
		c.Upsample(up, [][]float32{sine[n:]})

		fund := toneAmplitude(up[0], tone, highRate)
		if math.Abs(fund-1) > 1e-3 {
			t.Fatalf("factor %v: passband amplitude = %g, want 1", tc.f, fund)
		}

		image := toneAmplitude(up[0], rate-tone, highRate)
		if db := 20 * math.Log10(image/fund); db > tc.floorDB {
			t.Fatalf("factor %v: image at %g Hz = %.1f dB, want < %g dB", tc.f, rate-tone, db, tc.floorDB)
		}
	}
}

func TestDownsampleRejectsAliases(t *testing.T) {
	const (
		rate = 48000.0
		tone = 36000.0
		n    = 4800
	)

	c := prepared(t, core.Factor4x, 1, n)
	highRate := rate * 4
	high := testutil.Sine32(tone, highRate, 1, 2*n*4)
	down := core.NewChannels(1, n)

	c.Downsample(down, [][]float32{high[:n*4]})
	c.Downsample(down, [][]float32{high[n*4:]})

	alias := toneAmplitude(down[0], rate-tone, rate)
	if db := 20 * math.Log10(alias); db > -60 {
		t.Fatalf("alias of %g Hz at %g Hz = %.1f dB, want < -60 dB", tone, rate-tone, db)
	}
}

func TestResetMatchesFreshPrepare(t *testing.T) {
	for _, f := range []core.Factor{core.Factor4x, core.Factor8x} {
		used := prepared(t, f, 2, 128)
		fresh := prepared(t, f, 2, 128)

		noise := [][]float32{testutil.Noise32(1, 0.8, 128), testutil.Noise32(2, 0.8, 128)}
		up := core.NewChannels(2, 128*int(f))
		down := core.NewChannels(2, 128)
		used.Upsample(up, noise)
		used.Downsample(down, up)

		used.Reset()

		block := [][]float32{testutil.Sine32(440, 48000, 0.5, 128), testutil.Sine32(660, 48000, 0.5, 128)}
		gotUp := core.NewChannels(2, 128*int(f))
		wantUp := core.NewChannels(2, 128*int(f))
		used.Upsample(gotUp, block)
		fresh.Upsample(wantUp, block)

		gotDown := core.NewChannels(2, 128)
		wantDown := core.NewChannels(2, 128)
		used.Downsample(gotDown, gotUp)
		fresh.Downsample(wantDown, wantUp)

		for ch := range 2 {
			for i := range gotDown[ch] {
				if gotDown[ch][i] != wantDown[ch][i] {
					t.Fatalf("factor %v ch %d sample %d: %v != %v", f, ch, i, gotDown[ch][i], wantDown[ch][i])
				}
			}
		}
	}
}

func TestBlockBoundariesAreTransparent(t *testing.T) {
	whole := prepared(t, core.Factor8x, 1, 256)
	split := prepared(t, core.Factor8x, 1, 256)

	sig := testutil.Noise32(7, 0.5, 256)

	wantUp := core.NewChannels(1, 256*8)
	wantDown := core.NewChannels(1, 256)
	whole.Upsample(wantUp, [][]float32{sig})
	whole.Downsample(wantDown, wantUp)

	var got []float32
	for _, part := range [][]float32{sig[:37], sig[37:200], sig[200:]} {
		up := core.NewChannels(1, len(part)*8)
		down := core.NewChannels(1, len(part))
		split.Upsample(up, [][]float32{part})
		split.Downsample(down, up)
		got = append(got, down[0]...)
	}

	for i := range got {
		if got[i] != wantDown[0][i] {
			t.Fatalf("sample %d: split %v != whole %v", i, got[i], wantDown[0][i])
		}
	}
}

func TestFactorStableUntilNextPrepare(t *testing.T) {
	c := prepared(t, core.Factor8x, 2, 32)
	if c.Factor() != core.Factor8x {
		t.Fatalf("Factor() = %v, want 8x", c.Factor())
	}

	up := core.NewChannels(2, 32*8)
	down := core.NewChannels(2, 32)
	for range 3 {
		c.Upsample(up, core.NewChannels(2, 32))
		c.Downsample(down, up)
		c.Reset()
		if c.Factor() != core.Factor8x {
			t.Fatalf("Factor() changed to %v without Prepare", c.Factor())
		}
	}

	if err := c.Prepare(core.ApplyProcessorOptions(core.WithFactor(core.Factor4x))); err != nil {
		t.Fatal(err)
	}
	if c.Factor() != core.Factor4x {
		t.Fatalf("Factor() = %v after Prepare(4x)", c.Factor())
	}
}

func TestContractViolationsPanic(t *testing.T) {
	expectPanic(t, "before Prepare", func() {
		New().Upsample(core.NewChannels(2, 4), core.NewChannels(2, 1))
	})

	c := prepared(t, core.Factor8x, 2, 16)

	expectPanic(t, "channel mismatch", func() {
		c.Upsample(core.NewChannels(1, 8), core.NewChannels(1, 1))
	})
	expectPanic(t, "exceeds prepared maximum", func() {
		c.Upsample(core.NewChannels(2, 17*8), core.NewChannels(2, 17))
	})
	expectPanic(t, "dst has", func() {
		c.Upsample(core.NewChannels(2, 16*4), core.NewChannels(2, 16))
	})

	// A block upsampled at 4x handed to an 8x converter.
	expectPanic(t, "dst has", func() {
		c.Downsample(core.NewChannels(2, 16), core.NewChannels(2, 16*4))
	})
	expectPanic(t, "not a multiple", func() {
		c.Downsample(core.NewChannels(2, 1), core.NewChannels(2, 12))
	})
}

func TestLatencyReported(t *testing.T) {
	if New().Latency() != 0 {
		t.Fatal("unprepared latency should be 0")
	}

	for _, f := range []core.Factor{core.Factor4x, core.Factor8x} {
		c := prepared(t, f, 2, 64)
		lat := c.Latency()
		if !(lat > 0) || math.IsInf(lat, 0) {
			t.Fatalf("factor %v: latency = %g", f, lat)
		}
		if got := len(c.Stages()); got != f.Stages() {
			t.Fatalf("factor %v: %d stages", f, got)
		}
		if len(c.Coefficients(0)) == 0 || c.Coefficients(f.Stages()) != nil {
			t.Fatalf("factor %v: unexpected coefficient access", f)
		}
	}
}

func BenchmarkRoundTrip(b *testing.B) {
	for _, f := range []core.Factor{core.Factor4x, core.Factor8x} {
		b.Run(f.String(), func(b *testing.B) {
			c := New()
			if err := c.Prepare(core.ApplyProcessorOptions(core.WithMaxBlockSize(512), core.WithFactor(f))); err != nil {
				b.Fatal(err)
			}

			src := [][]float32{testutil.Noise32(1, 0.5, 512), testutil.Noise32(2, 0.5, 512)}
			up := core.NewChannels(2, 512*int(f))
			down := core.NewChannels(2, 512)

			b.ReportAllocs()
			b.ResetTimer()
			for range b.N {
				c.Upsample(up, src)
				c.Downsample(down, up)
			}
		})
	}
}
