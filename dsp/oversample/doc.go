// Package oversample provides integer-factor (4x, 8x) up- and downsampling
// built from cascaded 2x polyphase half-band IIR stages.
//
// Each 2x stage is the HIIR-style structure: two parallel chains of
// first-order allpass sections operating at the lower rate. The same
// coefficient set serves upsampling and downsampling, so a round trip has
// matching anti-imaging and anti-aliasing responses.
//
// Coefficients come from the closed-form elliptic half-band design used by
// Laurent de Soras' HIIR library: the transition bandwidth fixes the
// elliptic modulus, and each allpass coefficient follows from the theta
// series in halfband.go. The same formulas give the stopband attenuation,
// which [HalfbandOrder] inverts to find the smallest coefficient count.
//
// Stage 0 is the stage closest to the base rate and carries the narrowest
// transition band; later stages only have to reject images of content that
// already sits in the lower part of their band, so they use wider
// transitions and fewer coefficients.
//
// Default stage design:
//
//	factor  stage  transition  attenuation
//	4x      0      0.05        65 dB
//	4x      1      0.13        70 dB
//	8x      0      0.05        80 dB
//	8x      1      0.13        85 dB
//	8x      2      0.20        90 dB
//
// A [Converter] owns filter state per channel. [Converter.Prepare] allocates
// everything; [Converter.Upsample], [Converter.Downsample] and
// [Converter.Reset] never allocate.
package oversample
