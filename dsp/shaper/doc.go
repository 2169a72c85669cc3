// Package shaper implements the stateful saturation transfer function that
// runs at the oversampled rate.
//
// Every sample passes four stages:
//
//	drive       x *= 1 + 10*drive
//	character   x += 0.9*character*sin(x)
//	saturation  x  = tanh(x*s) / tanh(s),  s = 0.5*saturation + 0.5
//	presence    x += 0.6*presence*(x - last);  last = x
//
// The presence stage is a first-difference high-shelf approximation whose
// history is the post-emphasis output of the previous sample. History is kept
// per channel in [ChannelState].
//
// The sample path is single precision. Go has no float32 transcendental
// functions, so sin and tanh are evaluated by the math package on the widened
// value and narrowed again.
package shaper
