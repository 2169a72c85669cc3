package oversample

import "github.com/cwbudde/algo-mojo/dsp/core"

// halfband2x is the per-channel state of one 2x polyphase half-band stage.
// Coefficients are shared between channels and between the up and down
// direction; x and y hold the input and output memory of each allpass
// section.
type halfband2x struct {
	coeffs []float32
	x      []float32
	y      []float32
}

func newHalfband2x(coeffs []float32) halfband2x {
	return halfband2x{
		coeffs: coeffs,
		x:      make([]float32, len(coeffs)),
		y:      make([]float32, len(coeffs)),
	}
}

func (h *halfband2x) reset() {
	for i := range h.x {
		h.x[i] = 0
		h.y[i] = 0
	}
}

// run pushes one sample pair through both allpass chains. spl0 feeds the
// chain of even coefficients, spl1 the chain of odd coefficients. Output
// memory is flushed to zero once it decays into the subnormal range.
func (h *halfband2x) run(spl0, spl1 float32) (float32, float32) {
	c, x, y := h.coeffs, h.x, h.y
	n := len(c)

	i := 0
	for ; i+1 < n; i += 2 {
		t0 := (spl0-y[i])*c[i] + x[i]
		t1 := (spl1-y[i+1])*c[i+1] + x[i+1]
		x[i], x[i+1] = spl0, spl1
		y[i], y[i+1] = core.FlushDenormals32(t0), core.FlushDenormals32(t1)
		spl0, spl1 = t0, t1
	}

	if i < n {
		t0 := (spl0-y[i])*c[i] + x[i]
		x[i] = spl0
		y[i] = core.FlushDenormals32(t0)
		spl0 = t0
	}

	return spl0, spl1
}

// upsample writes 2*len(src) samples into dst.
func (h *halfband2x) upsample(dst, src []float32) {
	for i, v := range src {
		a, b := h.run(v, v)
		dst[2*i] = a
		dst[2*i+1] = b
	}
}

// downsample writes len(src)/2 samples into dst.
func (h *halfband2x) downsample(dst, src []float32) {
	for i := range dst {
		a, b := h.run(src[2*i+1], src[2*i])
		dst[i] = 0.5 * (a + b)
	}
}
