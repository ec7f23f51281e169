package interp

import "math"

// Linear2 interpolates between x0 and x1 at t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// ResampleHermite stretches or squeezes input to exactly outLen samples,
// mapping the first and last input samples onto the first and last output
// samples.
func ResampleHermite(input []float64, outLen int) []float64 {
	if outLen <= 0 || len(input) == 0 {
		return nil
	}

	out := make([]float64, outLen)
	if len(input) == 1 {
		for i := range out {
			out[i] = input[0]
		}
		return out
	}
	if outLen == 1 {
		out[0] = input[0]
		return out
	}

	step := float64(len(input)-1) / float64(outLen-1)
	for i := range out {
		out[i] = SampleHermite(input, float64(i)*step)
	}
	return out
}

// SampleHermite reads x at fractional position pos, holding the edge
// samples beyond either end.
func SampleHermite(x []float64, pos float64) float64 {
	idx := int(math.Floor(pos))
	frac := pos - float64(idx)
	return Hermite4(frac,
		SampleClamp(x, idx-1),
		SampleClamp(x, idx),
		SampleClamp(x, idx+1),
		SampleClamp(x, idx+2))
}

// SampleZero returns x[idx], or 0 outside the slice.
func SampleZero(x []float64, idx int) float64 {
	if idx < 0 || idx >= len(x) {
		return 0
	}
	return x[idx]
}

// SampleClamp returns x[idx] with idx clamped into range. Empty slices yield 0.
func SampleClamp(x []float64, idx int) float64 {
	if len(x) == 0 {
		return 0
	}
	if idx < 0 {
		return x[0]
	}
	if idx >= len(x) {
		return x[len(x)-1]
	}
	return x[idx]
}
