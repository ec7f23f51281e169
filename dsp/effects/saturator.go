package effects

import (
	"fmt"
	"math"

	"github.com/mohualzy/VoiceIce/dsp/core"
)

const (
	defaultSaturatorDrive = 1.0

	minSaturatorDrive = 0.01
	maxSaturatorDrive = 20.0
)

// SaturatorOption mutates construction-time parameters.
type SaturatorOption func(*saturatorConfig) error

type saturatorConfig struct {
	drive float64
}

// WithSaturatorDrive sets input drive in [0.01, 20].
func WithSaturatorDrive(drive float64) SaturatorOption {
	return func(cfg *saturatorConfig) error {
		if drive < minSaturatorDrive || drive > maxSaturatorDrive || math.IsNaN(drive) {
			return fmt.Errorf("saturator drive must be in [%g, %g]: %f", minSaturatorDrive, maxSaturatorDrive, drive)
		}

		cfg.drive = drive

		return nil
	}
}

// Saturator is a tanh soft-clipper, y = tanh(drive*x). The output is
// bounded by 1 for any input.
type Saturator struct {
	drive float64
}

// NewSaturator creates a saturator with validated options.
func NewSaturator(opts ...SaturatorOption) (*Saturator, error) {
	cfg := saturatorConfig{drive: defaultSaturatorDrive}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Saturator{drive: cfg.drive}, nil
}

// ProcessSample saturates one sample. Non-finite results become 0.
func (s *Saturator) ProcessSample(x float64) float64 {
	y := math.Tanh(s.drive * x)
	if !core.IsFinite(y) {
		return 0
	}

	return y
}

// ProcessInPlace saturates buf in place.
func (s *Saturator) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = s.ProcessSample(buf[i])
	}
}
