package spectrum

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/mohualzy/VoiceIce/dsp/window"
)

// Frames is the result of a short-time Fourier transform. Each row of
// Values holds fftSize/2+1 non-negative-frequency bins for one frame.
type Frames struct {
	Values  [][]float64
	FFTSize int
	Hop     int
	// Gain is the window's coherent gain, for amplitude correction.
	Gain float64
}

// BinHz returns the bin spacing for the given sample rate.
func (f Frames) BinHz(sampleRate float64) float64 {
	return sampleRate / float64(f.FFTSize)
}

// FrameCount returns the number of full hop-spaced frames that fit in n
// samples. Inputs no longer than one frame yield a single zero-padded frame.
func FrameCount(n, fftSize, hop int) int {
	if n <= fftSize {
		return 1
	}

	return 1 + (n-fftSize)/hop
}

// STFTMode selects what each frame row holds.
type STFTMode int

const (
	// STFTMagnitude stores |X[k]|.
	STFTMagnitude STFTMode = iota
	// STFTPower stores |X[k]|^2.
	STFTPower
)

// STFT frames samples with a periodic window of type win and transforms
// each frame. fftSize must be a power of two and hop in [1, fftSize].
func STFT(samples []float64, fftSize, hop int, win window.Type, mode STFTMode) (Frames, error) {
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return Frames{}, fmt.Errorf("stft size must be a power of two >= 2: %d", fftSize)
	}

	if hop < 1 || hop > fftSize {
		return Frames{}, fmt.Errorf("stft hop must be in [1, %d]: %d", fftSize, hop)
	}

	if len(samples) == 0 {
		return Frames{}, fmt.Errorf("stft input is empty")
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Frames{}, fmt.Errorf("stft init fft plan: %w", err)
	}

	coeffs := window.Generate(win, fftSize, window.WithPeriodic())
	frameBuf := make([]float64, fftSize)
	in := make([]complex128, fftSize)
	out := make([]complex128, fftSize)
	bins := fftSize/2 + 1

	count := FrameCount(len(samples), fftSize, hop)
	rows := make([][]float64, count)

	for f := range count {
		start := f * hop

		clear(frameBuf)
		if start < len(samples) {
			copy(frameBuf, samples[start:min(start+fftSize, len(samples))])
		}

		if err := window.ApplyCoefficients(frameBuf, frameBuf, coeffs); err != nil {
			return Frames{}, err
		}

		for i, v := range frameBuf {
			in[i] = complex(v, 0)
		}

		if err := plan.Forward(out, in); err != nil {
			return Frames{}, fmt.Errorf("stft frame %d: %w", f, err)
		}

		row := make([]float64, bins)
		if mode == STFTPower {
			PowerInto(row, out[:bins])
		} else {
			MagnitudeInto(row, out[:bins])
		}

		rows[f] = row
	}

	return Frames{
		Values:  rows,
		FFTSize: fftSize,
		Hop:     hop,
		Gain:    window.CoherentGain(coeffs),
	}, nil
}
