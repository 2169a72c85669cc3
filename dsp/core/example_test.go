package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-mojo/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithMaxBlockSize(256),
		core.WithFactor(core.Factor8x),
	)

	fmt.Printf("rate=%.0f block=%d factor=%v err=%v\n",
		cfg.OversampledRate(), cfg.OversampledBlockSize(), cfg.Factor, cfg.Validate())

	// Output:
	// rate=352800 block=2048 factor=8x err=<nil>
}
