// Package time computes time-domain level statistics of a voice take.
package time

import (
	"math"

	"github.com/mohualzy/VoiceIce/dsp/core"
)

const (
	// FrameSeconds is the frame length used for the activity measure.
	FrameSeconds = 0.01
	// ActiveGateDB is the frame RMS above which a frame counts as voiced.
	ActiveGateDB = -40.0
	// FullScale is the magnitude at which a sample counts as clipped.
	FullScale = 1.0
)

// Stats describes the level of one take. dB fields use the 20*log10
// amplitude convention and are -Inf for silence.
//
//nolint:revive
type Stats struct {
	Length         int
	Seconds        float64
	DC             float64
	RMS            float64
	RMS_dB         float64
	Peak           float64
	Peak_dB        float64
	PeakPos        int
	CrestFactor_dB float64
	// Clipped counts samples at or beyond full scale.
	Clipped int
	// ZeroCrossingRate is sign changes per second, a rough brightness cue.
	ZeroCrossingRate float64
	// Active is the share of frames above ActiveGateDB, in [0, 1].
	Active float64
}

// Calculate measures signal recorded at sampleRate. A non-positive rate
// leaves the per-second and per-frame fields zero.
func Calculate(signal []float64, sampleRate int) Stats {
	s := Stats{
		Length:         len(signal),
		RMS_dB:         math.Inf(-1),
		Peak_dB:        math.Inf(-1),
		CrestFactor_dB: math.Inf(-1),
	}
	if len(signal) == 0 {
		return s
	}

	var sum, sumSq float64

	crossings := 0

	for i, x := range signal {
		sum += x
		sumSq += x * x

		a := math.Abs(x)
		if a > s.Peak {
			s.Peak, s.PeakPos = a, i
		}

		if a >= FullScale {
			s.Clipped++
		}

		if i > 0 && signal[i-1]*x < 0 {
			crossings++
		}
	}

	n := float64(len(signal))
	s.DC = sum / n
	s.RMS = math.Sqrt(sumSq / n)
	s.RMS_dB = core.LinearToDB(s.RMS)
	s.Peak_dB = core.LinearToDB(s.Peak)

	if s.RMS > 0 {
		s.CrestFactor_dB = s.Peak_dB - s.RMS_dB
	}

	if sampleRate > 0 {
		s.Seconds = n / float64(sampleRate)
		s.ZeroCrossingRate = float64(crossings) / s.Seconds
		s.Active = activeShare(signal, sampleRate)
	}

	return s
}

// activeShare returns the fraction of FrameSeconds frames whose RMS clears
// ActiveGateDB. A trailing partial frame counts as a frame.
func activeShare(signal []float64, sampleRate int) float64 {
	size := max(1, int(math.Round(FrameSeconds*float64(sampleRate))))
	gate := core.DBToLinear(ActiveGateDB)

	frames, active := 0, 0

	for start := 0; start < len(signal); start += size {
		frame := signal[start:min(start+size, len(signal))]

		var sumSq float64
		for _, x := range frame {
			sumSq += x * x
		}

		frames++

		if math.Sqrt(sumSq/float64(len(frame))) > gate {
			active++
		}
	}

	return float64(active) / float64(frames)
}
