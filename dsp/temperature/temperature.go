package temperature

import (
	"fmt"
	"math"

	"github.com/mohualzy/VoiceIce/dsp/core"
	"github.com/mohualzy/VoiceIce/dsp/effects/pitch"
)

// Temperature is the single user-facing control. 1.0 is neutral.
type Temperature float64

const (
	MinTemperature     Temperature = 0.5
	MaxTemperature     Temperature = 2.0
	NeutralTemperature Temperature = 1.0
)

const (
	// KRate scales (t-1) into the time-stretch duration factor.
	KRate = 0.25
	// KPitch scales (t-1) into semitones.
	KPitch = 1.5
)

// Clamp returns t limited to [MinTemperature, MaxTemperature]. NaN maps
// to NeutralTemperature.
func (t Temperature) Clamp() Temperature {
	if math.IsNaN(float64(t)) {
		return NeutralTemperature
	}

	return Temperature(core.Clamp(float64(t), float64(MinTemperature), float64(MaxTemperature)))
}

// Valid reports whether t lies in [MinTemperature, MaxTemperature].
func (t Temperature) Valid() bool {
	return t >= MinTemperature && t <= MaxTemperature
}

// IsNeutral reports whether t is exactly the identity point.
func (t Temperature) IsNeutral() bool {
	return t == NeutralTemperature
}

func (t Temperature) String() string {
	return fmt.Sprintf("%.2f", float64(t))
}

// StretchRate returns the duration factor for t: 1 + (t-1)*KRate, held
// inside [pitch.MinRate, pitch.MaxRate]. Values above 1 lengthen.
func StretchRate(t Temperature) float64 {
	return core.Clamp(1+(float64(t)-1)*KRate, pitch.MinRate, pitch.MaxRate)
}

// Semitones returns the pitch shift for t: (t-1)*KPitch.
func Semitones(t Temperature) float64 {
	return (float64(t) - 1) * KPitch
}
