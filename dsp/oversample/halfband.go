package oversample

import (
	"fmt"
	"math"
)

// MaxCoefficients bounds the coefficient count chosen by [HalfbandOrder].
const MaxCoefficients = 32

// DesignHalfband computes polyphase half-band allpass coefficients for the
// given coefficient count and normalized transition bandwidth. Coefficients
// are returned in ascending order; even indices belong to the first allpass
// chain, odd indices to the second.
func DesignHalfband(numberOfCoeffs int, transition float64) ([]float64, error) {
	if err := validateDesignParams(numberOfCoeffs, transition); err != nil {
		return nil, err
	}

	k, q := computeTransitionParam(transition)
	order := numberOfCoeffs*2 + 1

	coeffs := make([]float64, numberOfCoeffs)
	for i := range numberOfCoeffs {
		coeffs[i] = computeCoefficient(i, k, q, order)
	}

	return coeffs, nil
}

// AttenuationDB returns the stopband attenuation in dB reached by a design
// with the given coefficient count and transition bandwidth.
func AttenuationDB(numberOfCoeffs int, transition float64) (float64, error) {
	if err := validateDesignParams(numberOfCoeffs, transition); err != nil {
		return 0, err
	}

	_, q := computeTransitionParam(transition)

	return computeAttenuation(q, numberOfCoeffs*2+1), nil
}

// HalfbandOrder returns the smallest coefficient count whose design reaches
// attenuationDB for the given transition bandwidth.
func HalfbandOrder(attenuationDB, transition float64) (int, error) {
	if !isFinite(attenuationDB) || attenuationDB <= 0 {
		return 0, fmt.Errorf("oversample: attenuation must be finite and > 0: %g", attenuationDB)
	}

	if err := validateDesignParams(1, transition); err != nil {
		return 0, err
	}

	_, q := computeTransitionParam(transition)
	for n := 1; n <= MaxCoefficients; n++ {
		if computeAttenuation(q, n*2+1) >= attenuationDB {
			return n, nil
		}
	}

	return 0, fmt.Errorf("oversample: %g dB at transition %g needs more than %d coefficients",
		attenuationDB, transition, MaxCoefficients)
}

func validateDesignParams(numberOfCoeffs int, transition float64) error {
	if numberOfCoeffs < 1 {
		return fmt.Errorf("oversample: number of coefficients must be >= 1: %d", numberOfCoeffs)
	}
	if !isFinite(transition) || transition <= 0 || transition >= 0.5 {
		return fmt.Errorf("oversample: transition must be finite and in (0, 0.5): %g", transition)
	}

	return nil
}

func computeTransitionParam(transition float64) (k, q float64) {
	k = math.Pow(math.Tan((1-transition*2)*math.Pi*0.25), 2)
	kksqrt := math.Pow(1-k*k, 0.25)
	e := 0.5 * (1 - kksqrt) / (1 + kksqrt)
	e4 := e * e * e * e
	q = e * (1 + e4*(2+e4*(15+150*e4)))

	return k, q
}

func computeAttenuation(q float64, order int) float64 {
	v := 4 * math.Exp(float64(order)*0.5*math.Log(q))
	return -10 * math.Log10(v/(1+v))
}

func computeCoefficient(index int, k, q float64, order int) float64 {
	c := index + 1
	num := thetaNumerator(q, order, c) * math.Pow(q, 0.25)
	den := thetaDenominator(q, order, c) + 0.5
	ww := (num * num) / (den * den)

	r := math.Sqrt((1-ww*k)*(1-ww/k)) / (1 + ww)
	return (1 - r) / (1 + r)
}

func thetaNumerator(q float64, order, c int) float64 {
	result := 0.0
	sign := 1.0
	for i := 0; ; i++ {
		term := math.Pow(q, float64(i*(i+1))) * math.Sin(float64(i*2+1)*float64(c)*math.Pi/float64(order)) * sign
		result += term
		sign = -sign
		if math.Abs(term) <= 1e-100 {
			break
		}
	}

	return result
}

func thetaDenominator(q float64, order, c int) float64 {
	result := 0.0
	sign := -1.0
	for i := 1; ; i++ {
		term := math.Pow(q, float64(i*i)) * math.Cos(2*float64(i)*float64(c)*math.Pi/float64(order)) * sign
		result += term
		sign = -sign
		if math.Abs(term) <= 1e-100 {
			break
		}
	}

	return result
}

// groupDelayDC returns the DC group delay of the half-band filter in samples
// of the stage's high rate.
func groupDelayDC(coeffs []float64) float64 {
	var pathA, pathB float64
	for i, a := range coeffs {
		d := 2 * (1 - a) / (1 + a)
		if i%2 == 0 {
			pathA += d
		} else {
			pathB += d
		}
	}

	return 0.5 * (pathA + pathB + 1)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
