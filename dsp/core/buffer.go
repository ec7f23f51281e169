package core

import "math"

// Clone returns a copy of buf. A nil input yields nil.
func Clone(buf []float64) []float64 {
	if buf == nil {
		return nil
	}
	out := make([]float64, len(buf))
	copy(out, buf)
	return out
}

// ClampInPlace limits every sample of buf to [min, max]. NaN samples
// become 0 when 0 lies in the range, min otherwise.
func ClampInPlace(buf []float64, min, max float64) {
	if min > max {
		min, max = max, min
	}

	nan := Clamp(0, min, max)

	for i, v := range buf {
		if math.IsNaN(v) {
			buf[i] = nan
			continue
		}

		buf[i] = Clamp(v, min, max)
	}
}

// AllFinite reports whether buf holds no NaN or infinite values.
// It returns the index of the first offending sample, or -1.
func AllFinite(buf []float64) (bool, int) {
	for i, v := range buf {
		if !IsFinite(v) {
			return false, i
		}
	}
	return true, -1
}

// Scale multiplies buf in place by gain.
func Scale(buf []float64, gain float64) {
	for i := range buf {
		buf[i] *= gain
	}
}
