package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine returns length samples of amplitude*sin(2*pi*f*n/sr).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise returns uniform noise in [-amplitude, amplitude) from
// a seeded source.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Mix sums equally long signals.
func Mix(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}

	out := make([]float64, len(signals[0]))
	for _, s := range signals {
		for i := range out {
			out[i] += s[i]
		}
	}

	return out
}

// SineGainDB runs two seconds of a unit sine at freqHz through process and
// returns the steady-state gain in dB, measured as RMS over the second
// half. process filters in place.
func SineGainDB(process func([]float64), freqHz, sampleRate float64) float64 {
	n := int(2 * sampleRate)
	buf := DeterministicSine(freqHz, sampleRate, 1, n)
	process(buf)

	var sum float64
	for _, v := range buf[n/2:] {
		sum += v * v
	}

	rms := math.Sqrt(sum / float64(n-n/2))

	return 20 * math.Log10(rms*math.Sqrt2)
}
