package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-mojo/mojo"
)

type presetsCmd struct {
	JSON bool `help:"Print each preset as a state document."`
}

func (p *presetsCmd) Run(g *globals) error {
	presets := mojo.Presets()

	if p.JSON {
		for _, preset := range presets {
			data, err := mojo.MarshalState(preset.Params)
			if err != nil {
				return err
			}
			fmt.Fprintf(g.out, "%s\t%s\n", preset.Name, data)
		}

		return nil
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDRIVE\tCHAR\tSAT\tPRES\tMIX\tOUT dB\tQUALITY")
	for _, preset := range presets {
		v := preset.Params
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%+.1f\t%s\n",
			preset.Name, v.Drive, v.Character, v.Saturation, v.Presence, v.Mix, v.OutputDB, v.Quality)
	}
	tw.Flush()

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	printTitle(g.out, "Factory presets")
	fmt.Fprintln(g.out, headerStyle.Render(lines[0]))
	for _, line := range lines[1:] {
		fmt.Fprintln(g.out, line)
	}

	return nil
}
