// Command mojo renders and measures the oversampled saturation effect.
//
// Usage:
//
//	mojo render [flags] [input.wav] -o output.wav
//	mojo analyze [flags]
//	mojo presets
//
// Every flag can also be set through a MOJO_* environment variable or a JSON
// configuration file passed with --config.
//
// Examples:
//
//	mojo render --preset "Vocal - Most Mojo" in.wav -o out.wav
//	mojo render --drive 0.8 --tone-freq 220 -o tone.wav
//	mojo analyze --freq 5000 --drive 0.7
//	MOJO_QUALITY=hq mojo render --no-offline in.wav -o out.wav
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

var version = "0.1.0"

type globals struct {
	logger *slog.Logger
	out    io.Writer
}

// CLI defines the command-line interface.
type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version information."`
	Config   kong.ConfigFlag  `short:"c" help:"JSON configuration file."`
	LogLevel string           `enum:"debug,info,warn,error" default:"warn" help:"Log level for diagnostics on stderr."`

	Render  renderCmd  `cmd:"" help:"Process a WAV file or a generated test tone."`
	Analyze analyzeCmd `cmd:"" help:"Measure aliasing of a processed sine at each oversampling factor."`
	Presets presetsCmd `cmd:"" help:"List factory presets."`
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	base := []kong.Option{
		kong.Name("mojo"),
		kong.Description("Oversampled saturation renderer"),
		kong.UsageOnError(),
		kong.DefaultEnvars("MOJO"),
		kong.Configuration(kong.JSON, "~/.config/mojo/config.json"),
		kong.Vars{"version": version},
	}

	return kong.New(cli, append(base, opts...)...)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	var cli CLI

	parser, err := newParser(&cli)
	if err != nil {
		printError(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	g := &globals{
		logger: newLogger(os.Stderr, cli.LogLevel),
		out:    os.Stdout,
	}

	if err := ctx.Run(g); err != nil {
		printError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func printError(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render("Error:"), message)
}
