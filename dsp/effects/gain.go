package effects

import (
	"fmt"

	"github.com/mohualzy/VoiceIce/dsp/core"
)

// Gain scales samples by a fixed linear factor.
type Gain struct {
	linear float64
}

// NewGain returns a gain stage. The factor must be finite and non-negative.
func NewGain(linear float64) (*Gain, error) {
	if !core.IsFinite(linear) || linear < 0 {
		return nil, fmt.Errorf("gain must be finite and >= 0: %f", linear)
	}

	return &Gain{linear: linear}, nil
}

// NewGainDB returns a gain stage from a level in decibels.
func NewGainDB(db float64) (*Gain, error) {
	if !core.IsFinite(db) {
		return nil, fmt.Errorf("gain dB must be finite: %f", db)
	}

	return NewGain(core.DBToLinear(db))
}

// Linear returns the linear factor.
func (g *Gain) Linear() float64 { return g.linear }

// DB returns the gain in decibels.
func (g *Gain) DB() float64 { return core.LinearToDB(g.linear) }

// ProcessSample scales one sample.
func (g *Gain) ProcessSample(x float64) float64 { return x * g.linear }

// ProcessInPlace scales buf in place.
func (g *Gain) ProcessInPlace(buf []float64) { core.Scale(buf, g.linear) }
