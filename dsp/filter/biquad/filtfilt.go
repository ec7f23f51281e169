package biquad

// PadLength returns the number of samples FiltFilt reflects onto each end
// of an input of length n for a cascade of the given section count.
func PadLength(sections, n int) int {
	if n < 2 {
		return 0
	}

	pad := 3 * (2*sections + 1)
	if pad > n-1 {
		pad = n - 1
	}

	return pad
}

// FiltFilt applies the cascade forward and then backward over x and
// returns a new slice of the same length. The combined response has zero
// phase and squared magnitude.
//
// Both ends are extended by odd reflection about the boundary sample and
// each pass starts from the steady state for its first sample, so a
// constant input comes out unchanged up to the cascade's DC gain squared.
// x is not modified.
func FiltFilt(coeffs []Coefficients, x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return []float64{}
	}

	if len(coeffs) == 0 {
		out := make([]float64, n)
		copy(out, x)

		return out
	}

	pad := PadLength(len(coeffs), n)
	ext := oddExtend(x, pad)
	chain := NewChain(coeffs)

	chain.primeSteadyState(ext[0])
	chain.ProcessBlock(ext)

	reverse(ext)
	chain.Reset()
	chain.primeSteadyState(ext[0])
	chain.ProcessBlock(ext)
	reverse(ext)

	out := make([]float64, n)
	copy(out, ext[pad:pad+n])

	return out
}

// oddExtend returns x with pad samples of point-symmetric reflection
// added on both sides: 2*x[0]-x[i] on the left, 2*x[n-1]-x[n-1-i] on the
// right.
func oddExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*pad)

	first, last := x[0], x[n-1]
	for i := range pad {
		ext[i] = 2*first - x[pad-i]
		ext[pad+n+i] = 2*last - x[n-2-i]
	}

	copy(ext[pad:], x)

	return ext
}

func reverse(buf []float64) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
