package oversample

import (
	"testing"

	"github.com/cwbudde/algo-mojo/dsp/core"
)

func TestHalfbandStageFlushesSubnormalState(t *testing.T) {
	h := newHalfband2x([]float32{0.5, 0.25, 0.75})

	h.run(1e-40, 1e-40)
	for i, v := range h.y {
		if v != 0 {
			t.Fatalf("y[%d] = %g, want 0", i, v)
		}
	}

	h.reset()
	a, b := h.run(1, 1)
	if a != 0.375 || b != 0.25 {
		t.Fatalf("run(1, 1) = (%v, %v), want (0.375, 0.25)", a, b)
	}
	if h.y[0] != 0.5 || h.y[1] != 0.25 || h.y[2] != 0.375 {
		t.Fatalf("state y = %v, want [0.5 0.25 0.375]", h.y)
	}
}

func TestHalfbandStageDecaysToExactZero(t *testing.T) {
	spec := DefaultStages(core.Factor4x)[0]
	n, err := HalfbandOrder(spec.AttenuationDB, spec.Transition)
	if err != nil {
		t.Fatal(err)
	}
	coeffs64, err := DesignHalfband(n, spec.Transition)
	if err != nil {
		t.Fatal(err)
	}
	coeffs := make([]float32, len(coeffs64))
	for i, v := range coeffs64 {
		coeffs[i] = float32(v)
	}

	h := newHalfband2x(coeffs)
	h.run(1, 1)
	for range 200000 {
		h.run(0, 0)
	}

	for i := range h.y {
		if h.x[i] != 0 || h.y[i] != 0 {
			t.Fatalf("section %d state = (%g, %g), want exact zero", i, h.x[i], h.y[i])
		}
	}
}
