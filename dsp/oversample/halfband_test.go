package oversample

import (
	"math"
	"testing"
)

func TestDesignHalfbandValidation(t *testing.T) {
	if _, err := DesignHalfband(0, 0.1); err == nil {
		t.Fatal("expected error for zero coefficients")
	}
	if _, err := DesignHalfband(4, 0); err == nil {
		t.Fatal("expected error for zero transition")
	}
	if _, err := DesignHalfband(4, 0.5); err == nil {
		t.Fatal("expected error for transition 0.5")
	}
	if _, err := DesignHalfband(4, math.NaN()); err == nil {
		t.Fatal("expected error for NaN transition")
	}
}

func TestDesignHalfbandCoefficientsStableAndAscending(t *testing.T) {
	for _, tr := range []float64{0.02, 0.05, 0.13, 0.2} {
		coeffs, err := DesignHalfband(8, tr)
		if err != nil {
			t.Fatalf("DesignHalfband(8, %g) error = %v", tr, err)
		}

		for i, c := range coeffs {
			if !(c > 0 && c < 1) {
				t.Fatalf("transition %g: coeff[%d] = %g outside (0, 1)", tr, i, c)
			}
			if i > 0 && c <= coeffs[i-1] {
				t.Fatalf("transition %g: coefficients not ascending at %d: %g <= %g", tr, i, c, coeffs[i-1])
			}
		}
	}
}

func TestAttenuationGrowsWithOrder(t *testing.T) {
	prev := 0.0
	for n := 1; n <= 12; n++ {
		att, err := AttenuationDB(n, 0.05)
		if err != nil {
			t.Fatalf("AttenuationDB(%d) error = %v", n, err)
		}
		if att <= prev {
			t.Fatalf("attenuation not increasing at n=%d: %g <= %g", n, att, prev)
		}
		prev = att
	}
}

func TestHalfbandOrderIsMinimal(t *testing.T) {
	for _, spec := range append(DefaultStages(4), DefaultStages(8)...) {
		n, err := HalfbandOrder(spec.AttenuationDB, spec.Transition)
		if err != nil {
			t.Fatalf("HalfbandOrder(%+v) error = %v", spec, err)
		}

		att, _ := AttenuationDB(n, spec.Transition)
		if att < spec.AttenuationDB {
			t.Fatalf("%+v: n=%d reaches only %g dB", spec, n, att)
		}

		if n > 1 {
			below, _ := AttenuationDB(n-1, spec.Transition)
			if below >= spec.AttenuationDB {
				t.Fatalf("%+v: n=%d is not minimal, n-1 reaches %g dB", spec, n, below)
			}
		}
	}
}

func TestHalfbandOrderErrors(t *testing.T) {
	if _, err := HalfbandOrder(-3, 0.1); err == nil {
		t.Fatal("expected error for negative attenuation")
	}
	if _, err := HalfbandOrder(1000, 0.001); err == nil {
		t.Fatal("expected error for unreachable attenuation")
	}
}

func TestGroupDelayPositive(t *testing.T) {
	coeffs, err := DesignHalfband(6, 0.05)
	if err != nil {
		t.Fatal(err)
	}

	d := groupDelayDC(coeffs)
	if !(d > 0.5) || math.IsInf(d, 0) {
		t.Fatalf("groupDelayDC = %g, want finite and > 0.5", d)
	}
}
