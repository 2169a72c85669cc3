package main

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-mojo/dsp/core"
	"github.com/cwbudde/algo-mojo/dsp/signal"
	"github.com/cwbudde/algo-mojo/internal/wavio"
	"github.com/cwbudde/algo-mojo/mojo"
)

type renderCmd struct {
	Params paramFlags `embed:""`

	Input   string `arg:"" optional:"" type:"existingfile" help:"Input WAV file. A test tone is rendered when omitted."`
	Output  string `short:"o" required:"" type:"path" help:"Output WAV file."`
	Format  string `enum:"float32,pcm16,pcm24" default:"float32" help:"Output sample format."`
	Offline bool   `default:"true" negatable:"" help:"Render at 8x regardless of the quality mode."`
	Block   int    `default:"512" help:"Processing block size in samples."`

	ToneFreq    float64 `default:"1000" help:"Test tone frequency in Hz."`
	ToneSeconds float64 `default:"2" help:"Test tone length in seconds."`
	ToneLevel   float64 `default:"-6" help:"Test tone level in dBFS."`
	SampleRate  int     `default:"48000" help:"Test tone sample rate."`
}

func (r *renderCmd) Run(g *globals) error {
	if r.Block <= 0 {
		return fmt.Errorf("block size must be > 0: %d", r.Block)
	}

	params, err := r.Params.resolve()
	if err != nil {
		return err
	}

	audio, err := r.load()
	if err != nil {
		return err
	}

	left, right, err := stereo(audio)
	if err != nil {
		return err
	}

	proc := mojo.NewProcessor(mojo.WithLogger(g.logger))
	proc.Params().Set(params)

	if err := proc.Prepare(float64(audio.SampleRate), r.Block, r.Offline); err != nil {
		return err
	}

	peakIn := signal.Peak(left, right)

	for start := 0; start < len(left); start += r.Block {
		end := min(start+r.Block, len(left))
		proc.ProcessBlock(left[start:end], right[start:end])
	}

	peakOut := signal.Peak(left, right)

	format, err := parseFormat(r.Format)
	if err != nil {
		return err
	}

	out := &wavio.Audio{SampleRate: audio.SampleRate, Format: format, Channels: [][]float32{left, right}}
	if err := wavio.WriteFile(r.Output, out); err != nil {
		return err
	}

	g.logger.Info("render complete", "output", r.Output, "frames", len(left))

	printTitle(g.out, "Render")
	printKV(g.out, "Output", r.Output)
	printKV(g.out, "Frames", len(left))
	printKV(g.out, "Sample rate", audio.SampleRate)
	printKV(g.out, "Quality", params.Quality)
	printKV(g.out, "Factor", proc.Factor())
	printKV(g.out, "Latency", fmt.Sprintf("%.2f samples", proc.Latency()))
	printKV(g.out, "Peak in", fmt.Sprintf("%.2f dBFS", core.LinearToDB(peakIn)))
	printKV(g.out, "Peak out", fmt.Sprintf("%.2f dBFS", core.LinearToDB(peakOut)))

	return nil
}

func (r *renderCmd) load() (*wavio.Audio, error) {
	if r.Input != "" {
		return wavio.ReadFile(r.Input)
	}

	if r.SampleRate <= 0 || r.ToneSeconds <= 0 {
		return nil, fmt.Errorf("test tone needs a positive sample rate and length")
	}

	gen, err := signal.NewGenerator(float64(r.SampleRate))
	if err != nil {
		return nil, err
	}

	n := int(math.Round(r.ToneSeconds * float64(r.SampleRate)))
	tone, err := gen.Sine(r.ToneFreq, core.DBToLinear(r.ToneLevel), n)
	if err != nil {
		return nil, err
	}

	return &wavio.Audio{SampleRate: r.SampleRate, Format: wavio.Float32, Channels: [][]float32{tone}}, nil
}

// stereo returns independent left and right buffers. Mono input is
// duplicated.
func stereo(a *wavio.Audio) ([]float32, []float32, error) {
	switch len(a.Channels) {
	case 1:
		return a.Channels[0], append([]float32(nil), a.Channels[0]...), nil
	case 2:
		return a.Channels[0], a.Channels[1], nil
	default:
		return nil, nil, fmt.Errorf("only mono and stereo input is supported, got %d channels", len(a.Channels))
	}
}

func parseFormat(s string) (wavio.Format, error) {
	for _, f := range []wavio.Format{wavio.Float32, wavio.PCM16, wavio.PCM24} {
		if f.String() == s {
			return f, nil
		}
	}

	return 0, fmt.Errorf("unknown sample format %q", s)
}
