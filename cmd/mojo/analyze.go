package main

import (
	"fmt"
	"math/bits"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-mojo/dsp/core"
	"github.com/cwbudde/algo-mojo/dsp/shaper"
	"github.com/cwbudde/algo-mojo/dsp/signal"
	"github.com/cwbudde/algo-mojo/measure/alias"
	"github.com/cwbudde/algo-mojo/mojo"
)

const analyzeBlock = 512

type analyzeCmd struct {
	Params paramFlags `embed:""`

	Freq       float64 `default:"5000" help:"Test tone frequency in Hz, snapped to the nearest FFT bin."`
	Level      float64 `default:"-6" help:"Test tone level in dBFS."`
	SampleRate float64 `default:"48000" help:"Base sample rate."`
	Size       int     `default:"8192" help:"FFT size, a power of two."`
}

type aliasRow struct {
	name   string
	result alias.Result
}

// Run measures the shaping curve without oversampling and at each factor.
// Mix and output gain are ignored so every row measures the wet signal.
func (a *analyzeCmd) Run(g *globals) error {
	params, err := a.Params.resolve()
	if err != nil {
		return err
	}
	params.Mix = 1
	params.OutputDB = 0

	if a.Size < 256 || bits.OnesCount(uint(a.Size)) != 1 {
		return fmt.Errorf("FFT size must be a power of two >= 256: %d", a.Size)
	}

	gen, err := signal.NewGenerator(a.SampleRate)
	if err != nil {
		return err
	}

	freq := gen.SnapToBin(a.Freq, a.Size)
	warmup := a.Size / 2
	tone, err := gen.Sine(freq, core.DBToLinear(a.Level), warmup+a.Size)
	if err != nil {
		return err
	}

	cfg := alias.Config{SampleRate: a.SampleRate, FundamentalFreq: freq}

	naive := shaper.New()
	if err := naive.Prepare(a.SampleRate, 2); err != nil {
		return err
	}

	res, err := measure(tone, warmup, cfg, func(l, r []float32) {
		naive.ProcessStereo(l, r, params.Shaper())
	})
	if err != nil {
		return err
	}
	rows := []aliasRow{{name: "none", result: res}}

	for _, mode := range []mojo.QualityMode{mojo.Live4x, mojo.HQ8x} {
		params.Quality = mode

		proc := mojo.NewProcessor(mojo.WithLogger(g.logger))
		proc.Params().Set(params)
		if err := proc.Prepare(a.SampleRate, analyzeBlock, false); err != nil {
			return err
		}

		res, err := measure(tone, warmup, cfg, proc.ProcessBlock)
		if err != nil {
			return err
		}
		rows = append(rows, aliasRow{name: proc.Factor().String(), result: res})
	}

	printTitle(g.out, "Aliasing")
	printKV(g.out, "Tone", fmt.Sprintf("%.2f Hz at %.1f dBFS", freq, a.Level))
	printKV(g.out, "FFT size", a.Size)
	fmt.Fprintln(g.out)
	printAliasTable(g, rows)

	return nil
}

// measure runs process over a copy of tone in analyzeBlock chunks and
// analyzes the left channel after warmup samples.
func measure(tone []float32, warmup int, cfg alias.Config, process func(l, r []float32)) (alias.Result, error) {
	l := append([]float32(nil), tone...)
	r := append([]float32(nil), tone...)

	for start := 0; start < len(l); start += analyzeBlock {
		end := min(start+analyzeBlock, len(l))
		process(l[start:end], r[start:end])
	}

	steady := make([]float64, len(l)-warmup)
	for i, v := range l[warmup:] {
		steady[i] = float64(v)
	}

	return alias.Analyze(steady, cfg)
}

func printAliasTable(g *globals, rows []aliasRow) {
	best := 0
	for i, row := range rows {
		if row.result.AliasRatioDB < rows[best].result.AliasRatioDB {
			best = i
		}
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OVERSAMPLING\tALIAS dB\tPEAK ALIAS dB\tPEAK ALIAS Hz\tTHD dB")
	for _, row := range rows {
		res := row.result
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.0f\t%.1f\n",
			row.name, res.AliasRatioDB, res.PeakAliasDB, res.PeakAliasFreq, res.THDdB)
	}
	tw.Flush()

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	fmt.Fprintln(g.out, headerStyle.Render(lines[0]))
	for i, line := range lines[1:] {
		if i == best {
			line = bestStyle.Render(line)
		}
		fmt.Fprintln(g.out, line)
	}
}
