package mojo

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-mojo/dsp/core"
)

// QualityMode selects the oversampling factor used in real-time operation.
type QualityMode int

const (
	// Live4x is the low-latency default.
	Live4x QualityMode = iota
	// HQ8x trades CPU for lower aliasing.
	HQ8x
	// Transient4x runs at 4x and is intended for percussive material.
	Transient4x
	// Adaptive runs at 4x.
	Adaptive
	// AnalogHook8x runs at 8x.
	AnalogHook8x
)

var qualityNames = [...]string{
	Live4x:       "live",
	HQ8x:         "hq",
	Transient4x:  "transient",
	Adaptive:     "adaptive",
	AnalogHook8x: "analog",
}

// QualityModes returns every mode in declaration order.
func QualityModes() []QualityMode {
	return []QualityMode{Live4x, HQ8x, Transient4x, Adaptive, AnalogHook8x}
}

// Valid reports whether m is a known mode.
func (m QualityMode) Valid() bool {
	return m >= Live4x && m <= AnalogHook8x
}

func (m QualityMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("QualityMode(%d)", int(m))
	}

	return qualityNames[m]
}

// ParseQualityMode resolves a mode by its String form, case-insensitively.
func ParseQualityMode(s string) (QualityMode, error) {
	for _, m := range QualityModes() {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}

	return Live4x, fmt.Errorf("mojo: unknown quality mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m QualityMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("mojo: invalid quality mode %d", int(m))
	}

	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *QualityMode) UnmarshalText(text []byte) error {
	parsed, err := ParseQualityMode(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// FactorFor returns the oversampling factor for mode. Offline rendering
// always uses 8x.
func FactorFor(mode QualityMode, offline bool) core.Factor {
	if offline {
		return core.Factor8x
	}

	switch mode {
	case HQ8x, AnalogHook8x:
		return core.Factor8x
	default:
		return core.Factor4x
	}
}
