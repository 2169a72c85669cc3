// Package alias measures how much of a processed test tone's in-band energy
// is neither the fundamental nor one of its harmonics. For a memoryless
// nonlinearity driven by a pure tone that residue is dominated by harmonics
// folded back across Nyquist, so the ratio is a direct aliasing figure for
// comparing oversampling settings.
package alias
