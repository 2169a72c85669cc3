package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/algo-mojo/mojo"
)

// optionalFloat records whether a flag was given, so explicit values can be
// layered over a preset.
type optionalFloat struct {
	value float32
	set   bool
}

// Decode accepts command-line and environment strings as well as numbers
// from a JSON configuration file.
func (o *optionalFloat) Decode(ctx *kong.DecodeContext) error {
	token, err := ctx.Scan.PopValue("value")
	if err != nil {
		return err
	}

	var v float64
	switch raw := token.Value.(type) {
	case string:
		v, err = strconv.ParseFloat(raw, 32)
		if err != nil {
			return fmt.Errorf("expected a number but got %q", raw)
		}
	case float64:
		v = raw
	case float32:
		v = float64(raw)
	case int:
		v = float64(raw)
	case int64:
		v = float64(raw)
	case json.Number:
		v, err = raw.Float64()
		if err != nil {
			return fmt.Errorf("expected a number but got %q", raw)
		}
	default:
		return fmt.Errorf("expected a number but got %v (%T)", raw, raw)
	}

	o.value = float32(v)
	o.set = true

	return nil
}

func (o optionalFloat) apply(dst *float32) {
	if o.set {
		*dst = o.value
	}
}

// paramFlags are the effect controls shared by render and analyze.
type paramFlags struct {
	Preset     string        `help:"Factory preset to start from (see 'mojo presets')."`
	Drive      optionalFloat `help:"Drive [0,1]." placeholder:"0.5"`
	Character  optionalFloat `help:"Character [0,1]." placeholder:"0.5"`
	Saturation optionalFloat `help:"Saturation [0,1]." placeholder:"0.5"`
	Presence   optionalFloat `help:"Presence [0,1]." placeholder:"0.5"`
	Mix        optionalFloat `help:"Wet share [0,1]." placeholder:"1"`
	OutputDB   optionalFloat `name:"output-db" help:"Output gain in dB [-12,12]." placeholder:"0"`
	Quality    string        `help:"Quality mode: live, hq, transient, adaptive or analog."`
}

// resolve layers explicit flags over the preset (or the defaults) and
// rejects out-of-range values instead of clamping them.
func (f paramFlags) resolve() (mojo.Params, error) {
	p := mojo.DefaultParams()

	if f.Preset != "" {
		preset, err := mojo.PresetByName(f.Preset)
		if err != nil {
			return mojo.Params{}, err
		}
		p = preset.Params
	}

	f.Drive.apply(&p.Drive)
	f.Character.apply(&p.Character)
	f.Saturation.apply(&p.Saturation)
	f.Presence.apply(&p.Presence)
	f.Mix.apply(&p.Mix)
	f.OutputDB.apply(&p.OutputDB)

	if f.Quality != "" {
		q, err := mojo.ParseQualityMode(f.Quality)
		if err != nil {
			return mojo.Params{}, err
		}
		p.Quality = q
	}

	if err := p.Validate(); err != nil {
		return mojo.Params{}, fmt.Errorf("invalid parameters: %w", err)
	}

	return p, nil
}
