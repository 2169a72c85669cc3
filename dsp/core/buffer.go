package core

// NewChannels allocates channels zeroed float32 buffers of length n each.
func NewChannels(channels, n int) [][]float32 {
	if channels <= 0 {
		return nil
	}
	if n < 0 {
		n = 0
	}

	backing := make([]float32, channels*n)
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = backing[ch*n : (ch+1)*n : (ch+1)*n]
	}
	return out
}
