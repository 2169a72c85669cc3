package mojo

// mixInto blends dry into wet in place and applies gain:
// wet = (dry*(1-amount) + wet*amount) * gain.
func mixInto(wet, dry []float32, amount, gain float32) {
	dryGain := (1 - amount) * gain
	wetGain := amount * gain

	dry = dry[:len(wet)]
	for i := range wet {
		wet[i] = dry[i]*dryGain + wet[i]*wetGain
	}
}
