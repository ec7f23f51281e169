package temperature

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/mohualzy/VoiceIce/dsp/core"
	"github.com/mohualzy/VoiceIce/dsp/effects/pitch"
)

// Pipeline runs the temperature transform. A Pipeline holds no per-call
// state and is safe for concurrent use.
type Pipeline struct {
	logger *log.Logger
	wsola  []pitch.Option
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger that receives fallback warnings.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithWSOLA overrides the window geometry of the stretch and pitch stages.
func WithWSOLA(opts ...pitch.Option) Option {
	return func(p *Pipeline) {
		p.wsola = append([]pitch.Option(nil), opts...)
	}
}

// NewPipeline returns a pipeline that logs nowhere by default.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Transform runs Apply and never fails: if a stage reports an error the
// failure is logged at warn level and a copy of the original samples is
// returned, discarding any stages that had already completed.
func (p *Pipeline) Transform(samples []float64, sampleRate int, t Temperature) []float64 {
	out, err := p.Apply(samples, sampleRate, t)
	if err != nil {
		p.logger.Warn("transform failed, returning original",
			"temperature", t.Clamp(), "samples", len(samples), "rate", sampleRate, "err", err)

		return core.Clone(samples)
	}

	return out
}

// Apply runs every stage and returns the first stage error. samples is
// never modified.
func (p *Pipeline) Apply(samples []float64, sampleRate int, t Temperature) ([]float64, error) {
	t = t.Clamp()

	if t.IsNeutral() {
		out := make([]float64, len(samples))
		copy(out, samples)
		core.ClampInPlace(out, -1, 1)

		return out, nil
	}

	sr := float64(sampleRate)
	out := samples

	if rate := StretchRate(t); rate != 1 {
		stretcher, err := pitch.NewTimeStretcher(sr, p.wsola...)
		if err != nil {
			return nil, fmt.Errorf("time stretch: %w", err)
		}

		if err := stretcher.SetRate(rate); err != nil {
			return nil, fmt.Errorf("time stretch: %w", err)
		}

		if out, err = stretcher.Process(out); err != nil {
			return nil, err
		}
	}

	if st := Semitones(t); st != 0 {
		shifter, err := pitch.NewPitchShifter(sr, p.wsola...)
		if err != nil {
			return nil, fmt.Errorf("pitch shift: %w", err)
		}

		if err := shifter.SetPitchSemitones(st); err != nil {
			return nil, fmt.Errorf("pitch shift: %w", err)
		}

		if out, err = shifter.Process(out); err != nil {
			return nil, err
		}
	}

	effect := Plan(t)

	out, err := effect.Apply(out, sampleRate)
	if err != nil {
		return nil, err
	}

	core.ClampInPlace(out, -1, 1)

	return out, nil
}

