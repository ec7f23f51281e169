package temperature

import "math"

// Mood is the coarse label shown next to the temperature.
type Mood string

const (
	MoodBlaze  Mood = "blaze"
	MoodEmber  Mood = "ember"
	MoodSteady Mood = "steady"
)

const (
	blazeAbove = 1.2
	emberBelow = 0.8
)

// Report holds the display metrics derived from a temperature.
type Report struct {
	Temperature Temperature
	// Intensity is max(0, 80*(t-0.8)), in percent.
	Intensity float64
	// Calm is max(0, 100-Intensity), in percent.
	Calm float64
	// Flow is the playback speed factor shown to the user; it equals t.
	Flow float64
	Mood Mood
	// Caption describes the mood in a few words.
	Caption string
	// Hint is a one-line piece of advice.
	Hint string
}

// Describe computes the Report for t. It depends on t alone.
func Describe(t Temperature) Report {
	t = t.Clamp()
	x := float64(t)

	intensity := math.Max(0, 80*(x-0.8))

	r := Report{
		Temperature: t,
		Intensity:   intensity,
		Calm:        math.Max(0, 100-intensity),
		Flow:        x,
		Mood:        MoodSteady,
		Caption:     "even-tempered",
		Hint:        "Slow, gentle words land like spring rain.",
	}

	switch {
	case x > blazeAbove:
		r.Mood = MoodBlaze
		r.Caption = "full of fire"
		r.Hint = "Words spoken in haste can wound."
	case x < emberBelow:
		r.Mood = MoodEmber
		r.Caption = "soft-spoken"
	}

	return r
}
