package spectrum

import (
	"fmt"
	"math"

	"github.com/mohualzy/VoiceIce/dsp/core"
	"github.com/mohualzy/VoiceIce/dsp/window"
)

const (
	bandFFTSize = 2048
	bandHop     = 1024
)

// BandEnergy returns the mean per-frame power of samples between loHz and
// hiHz inclusive, measured with a Hann-windowed 2048-point STFT. The
// result is comparable across signals at the same sample rate.
func BandEnergy(samples []float64, sampleRate, loHz, hiHz float64) (float64, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("band energy sample rate must be positive and finite: %f", sampleRate)
	}

	if loHz < 0 || hiHz < loHz || math.IsNaN(loHz) || math.IsNaN(hiHz) {
		return 0, fmt.Errorf("band energy range is invalid: [%f, %f]", loHz, hiHz)
	}

	frames, err := STFT(samples, bandFFTSize, bandHop, window.TypeHann, STFTPower)
	if err != nil {
		return 0, err
	}

	binHz := frames.BinHz(sampleRate)
	lo := int(math.Ceil(loHz / binHz))
	hi := min(int(math.Floor(hiHz/binHz)), bandFFTSize/2)

	total := 0.0
	for _, row := range frames.Values {
		for k := lo; k <= hi; k++ {
			total += row[k]
		}
	}

	return total / float64(len(frames.Values)), nil
}

// BandRatioDB returns 10*log10(BandEnergy(a)/BandEnergy(b)) over the same
// band, the attenuation of a relative to b when negative.
func BandRatioDB(a, b []float64, sampleRate, loHz, hiHz float64) (float64, error) {
	ea, err := BandEnergy(a, sampleRate, loHz, hiHz)
	if err != nil {
		return 0, err
	}

	eb, err := BandEnergy(b, sampleRate, loHz, hiHz)
	if err != nil {
		return 0, err
	}

	if eb == 0 {
		return math.Inf(1), nil
	}

	return core.LinearPowerToDB(ea / eb), nil
}
