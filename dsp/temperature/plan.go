package temperature

import (
	"fmt"

	"github.com/mohualzy/VoiceIce/dsp/core"
	"github.com/mohualzy/VoiceIce/dsp/effects"
	"github.com/mohualzy/VoiceIce/dsp/filter/biquad"
	"github.com/mohualzy/VoiceIce/dsp/filter/design/pass"
)

const (
	coolingBaseHz    = 1200.0
	coolingSlopeHz   = 9600.0
	coolingBaseGain  = 0.8
	coolingGainSlope = 0.4
	heatingDriveRate = 4.0

	// FilterOrder is the Butterworth order of the cooling lowpass.
	FilterOrder = 4

	minNormalizedCutoff = 0.01
	maxNormalizedCutoff = 0.99
)

// Effect is the tone-shaping stage selected once per temperature.
// It is one of Cooling, Heating or Neutral.
type Effect interface {
	// Apply returns a processed copy of samples; samples is not modified.
	Apply(samples []float64, sampleRate int) ([]float64, error)
	String() string

	effect()
}

// Cooling muffles and softens: a zero-phase Butterworth lowpass at
// CutoffHz followed by a linear Gain.
type Cooling struct {
	CutoffHz float64
	Gain     float64
}

// Heating drives a tanh saturator with Drive.
type Heating struct {
	Drive float64
}

// Neutral leaves the signal untouched.
type Neutral struct{}

func (Cooling) effect() {}
func (Heating) effect() {}
func (Neutral) effect() {}

// Plan selects the effect for t (clamped into range first).
//
//	t < 1: Cooling{CutoffHz: 1200 + (t-0.5)*9600, Gain: 0.8 + (t-0.5)*0.4}
//	t > 1: Heating{Drive: 1 + (t-1)*4}
//	t = 1: Neutral{}
func Plan(t Temperature) Effect {
	t = t.Clamp()
	x := float64(t)

	switch {
	case t < NeutralTemperature:
		return Cooling{
			CutoffHz: coolingBaseHz + (x-0.5)*coolingSlopeHz,
			Gain:     coolingBaseGain + (x-0.5)*coolingGainSlope,
		}
	case t > NeutralTemperature:
		return Heating{Drive: 1 + (x-1)*heatingDriveRate}
	default:
		return Neutral{}
	}
}

// NormalizedCutoff returns CutoffHz as a fraction of Nyquist, clamped to
// [0.01, 0.99].
func (c Cooling) NormalizedCutoff(sampleRate int) float64 {
	nyquist := float64(sampleRate) / 2
	return core.Clamp(c.CutoffHz/nyquist, minNormalizedCutoff, maxNormalizedCutoff)
}

// Sections returns the lowpass cascade for sampleRate.
func (c Cooling) Sections(sampleRate int) []biquad.Coefficients {
	return pass.ButterworthLPNormalized(c.NormalizedCutoff(sampleRate), FilterOrder)
}

// Apply lowpasses samples forward and backward, then scales by Gain.
func (c Cooling) Apply(samples []float64, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("cooling: sample rate must be positive: %d", sampleRate)
	}

	sections := c.Sections(sampleRate)
	if len(sections) == 0 {
		return nil, fmt.Errorf("cooling: no filter for cutoff %.1f Hz at %d Hz", c.CutoffHz, sampleRate)
	}

	out := biquad.FiltFilt(sections, samples)

	gain, err := effects.NewGain(c.Gain)
	if err != nil {
		return nil, fmt.Errorf("cooling: %w", err)
	}

	gain.ProcessInPlace(out)

	return out, nil
}

func (c Cooling) String() string {
	return fmt.Sprintf("cooling(cutoff=%.0fHz gain=%.3f)", c.CutoffHz, c.Gain)
}

// Apply saturates a copy of samples.
func (h Heating) Apply(samples []float64, _ int) ([]float64, error) {
	sat, err := effects.NewSaturator(effects.WithSaturatorDrive(h.Drive))
	if err != nil {
		return nil, fmt.Errorf("heating: %w", err)
	}

	out := core.Clone(samples)
	sat.ProcessInPlace(out)

	return out, nil
}

func (h Heating) String() string {
	return fmt.Sprintf("heating(drive=%.3f)", h.Drive)
}

// Apply returns a copy of samples.
func (Neutral) Apply(samples []float64, _ int) ([]float64, error) {
	return core.Clone(samples), nil
}

func (Neutral) String() string { return "neutral" }
