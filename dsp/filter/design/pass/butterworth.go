package pass

import (
	"math"

	"github.com/mohualzy/VoiceIce/dsp/filter/biquad"
)

// ButterworthLP designs a lowpass Butterworth cascade with its -3 dB point
// at freq (Hz).
//
// For odd orders, the final section is first-order (B2=A2=0).
func ButterworthLP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	if order <= 0 {
		return nil
	}

	if _, ok := normalizedW0(freq, sampleRate); !ok {
		return nil
	}

	sections := make([]biquad.Coefficients, 0, (order+1)/2)
	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, LowpassRBJ(freq, butterworthQ(order, i), sampleRate))
	}

	if order%2 != 0 {
		sections = append(sections, butterworthFirstOrderLP(freq, sampleRate))
	}

	return sections
}

// ButterworthLPNormalized designs the same cascade from a cutoff given as
// a fraction of Nyquist. wn must lie strictly inside (0, 1).
func ButterworthLPNormalized(wn float64, order int) []biquad.Coefficients {
	if wn <= 0 || wn >= 1 || math.IsNaN(wn) {
		return nil
	}

	// A sample rate of 2 puts Nyquist at 1 Hz.
	return ButterworthLP(wn, order, 2)
}

// butterworthQ returns the quality factor for section index of an order
// Butterworth, with index in [0, order/2).
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return defaultQ
	}

	return 1 / (2 * s)
}

func butterworthFirstOrderLP(freq, sampleRate float64) biquad.Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}
