package pitch

import (
	"fmt"
	"math"

	"github.com/mohualzy/VoiceIce/dsp/interp"
)

const (
	minPitchRatio = 0.25
	maxPitchRatio = 4.0
)

// PitchShifter performs time-domain pitch shifting using a WSOLA stretch
// followed by Hermite resampling back to the input length.
//
// Pitch ratio:
//   - 1.0 = unchanged
//   - 2.0 = one octave up
//   - 0.5 = one octave down
type PitchShifter struct {
	sampleRate float64
	pitchRatio float64
	w          *wsola
}

// NewPitchShifter constructs a pitch shifter at unity ratio.
func NewPitchShifter(sampleRate float64, opts ...Option) (*PitchShifter, error) {
	w, err := newWSOLA(sampleRate, opts)
	if err != nil {
		return nil, err
	}

	return &PitchShifter{sampleRate: sampleRate, pitchRatio: 1, w: w}, nil
}

// SampleRate returns the sample rate in Hz.
func (p *PitchShifter) SampleRate() float64 { return p.sampleRate }

// PitchRatio returns the pitch ratio.
func (p *PitchShifter) PitchRatio() float64 { return p.pitchRatio }

// PitchSemitones returns the pitch shift in semitones.
func (p *PitchShifter) PitchSemitones() float64 { return 12 * math.Log2(p.pitchRatio) }

// SetPitchRatio updates the pitch ratio, in [0.25, 4].
func (p *PitchShifter) SetPitchRatio(ratio float64) error {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio < minPitchRatio || ratio > maxPitchRatio {
		return fmt.Errorf("pitch shifter ratio must be in [%g, %g]: %f", minPitchRatio, maxPitchRatio, ratio)
	}

	p.pitchRatio = ratio

	return nil
}

// SetPitchSemitones updates the pitch shift in semitones.
func (p *PitchShifter) SetPitchSemitones(semitones float64) error {
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return fmt.Errorf("pitch shifter semitones must be finite: %f", semitones)
	}

	if err := p.SetPitchRatio(math.Pow(2, semitones/12)); err != nil {
		return fmt.Errorf("pitch shifter semitones out of range: %w", err)
	}

	return nil
}

// Process returns a pitch-shifted copy of input with the same length.
func (p *PitchShifter) Process(input []float64) ([]float64, error) {
	if err := validateInput(input); err != nil {
		return nil, fmt.Errorf("pitch shift: %w", err)
	}

	if math.Abs(p.pitchRatio-1) <= identityEps {
		out := make([]float64, len(input))
		copy(out, input)

		return out, nil
	}

	stretched := p.w.stretch(input, p.pitchRatio)

	return interp.ResampleHermite(stretched, len(input)), nil
}
