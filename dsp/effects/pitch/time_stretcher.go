package pitch

import (
	"fmt"
	"math"
)

const (
	// MinRate and MaxRate bound the duration factor accepted by TimeStretcher.
	MinRate = 0.1
	MaxRate = 5.0
)

// TimeStretcher changes the duration of a buffer without changing its
// pitch. A rate of 2 doubles the duration; 0.5 halves it.
type TimeStretcher struct {
	sampleRate float64
	rate       float64
	w          *wsola
}

// NewTimeStretcher constructs a stretcher at unity rate.
func NewTimeStretcher(sampleRate float64, opts ...Option) (*TimeStretcher, error) {
	w, err := newWSOLA(sampleRate, opts)
	if err != nil {
		return nil, err
	}

	return &TimeStretcher{sampleRate: sampleRate, rate: 1, w: w}, nil
}

// SampleRate returns the sample rate in Hz.
func (s *TimeStretcher) SampleRate() float64 { return s.sampleRate }

// Rate returns the duration factor.
func (s *TimeStretcher) Rate() float64 { return s.rate }

// SetRate updates the duration factor. It must lie in [MinRate, MaxRate].
func (s *TimeStretcher) SetRate(rate float64) error {
	if math.IsNaN(rate) || rate < MinRate || rate > MaxRate {
		return fmt.Errorf("time stretcher rate must be in [%g, %g]: %f", MinRate, MaxRate, rate)
	}

	s.rate = rate

	return nil
}

// Process returns a new buffer of round(len(input)*rate) samples.
// A unity rate returns an exact copy.
func (s *TimeStretcher) Process(input []float64) ([]float64, error) {
	if err := validateInput(input); err != nil {
		return nil, fmt.Errorf("time stretch: %w", err)
	}

	if math.Abs(s.rate-1) <= identityEps {
		out := make([]float64, len(input))
		copy(out, input)

		return out, nil
	}

	return s.w.stretch(input, s.rate), nil
}
