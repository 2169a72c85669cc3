package mojo

import (
	"fmt"
	"strings"
)

// Preset is a named factory parameter set.
type Preset struct {
	Name   string
	Params Params
}

func preset(name string, drive, character, saturation, presence, mix, outputDB float32, q QualityMode) Preset {
	return Preset{
		Name: name,
		Params: Params{
			Drive:      drive,
			Character:  character,
			Saturation: saturation,
			Presence:   presence,
			Mix:        mix,
			OutputDB:   outputDB,
			Quality:    q,
		},
	}
}

var factoryPresets = [...]Preset{
	preset("Vocal - Mojo", 0.4, 0.5, 0.4, 0.6, 0.8, 0.0, Live4x),
	preset("Vocal - More Mojo", 0.6, 0.55, 0.55, 0.7, 1.0, 0.2, Adaptive),
	preset("Vocal - Most Mojo", 0.7, 0.6, 0.7, 0.8, 1.0, 0.5, HQ8x),

	preset("Instrument - Mojo", 0.5, 0.45, 0.5, 0.5, 0.7, 0.0, Live4x),
	preset("Instrument - More Mojo", 0.65, 0.6, 0.6, 0.6, 0.9, 0.3, Adaptive),
	preset("Instrument - Most Mojo", 0.8, 0.7, 0.75, 0.7, 1.0, 0.5, HQ8x),

	preset("Bus - Mojo", 0.3, 0.4, 0.4, 0.5, 0.6, 0.0, Live4x),
	preset("Bus - More Mojo", 0.5, 0.5, 0.5, 0.6, 0.8, 0.2, Transient4x),
	preset("Bus - Most Mojo", 0.7, 0.6, 0.6, 0.7, 1.0, 0.4, HQ8x),

	preset("Master - Mojo", 0.25, 0.3, 0.3, 0.4, 0.5, 0.0, Live4x),
	preset("Master - More Mojo", 0.4, 0.45, 0.45, 0.5, 0.7, 0.2, Adaptive),
	preset("Master - Most Mojo", 0.6, 0.55, 0.55, 0.6, 0.9, 0.3, HQ8x),
}

// Presets returns a copy of the factory presets.
func Presets() []Preset {
	out := make([]Preset, len(factoryPresets))
	copy(out, factoryPresets[:])

	return out
}

// PresetByName looks up a factory preset, ignoring case.
func PresetByName(name string) (Preset, error) {
	for _, p := range factoryPresets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}

	return Preset{}, fmt.Errorf("mojo: unknown preset %q", name)
}

// ApplyPreset stores every parameter of p.
func (s *ParamStore) ApplyPreset(p Preset) {
	s.Set(p.Params)
}
