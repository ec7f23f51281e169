package pitch

import (
	"errors"
	"fmt"
	"math"

	"github.com/mohualzy/VoiceIce/dsp/core"
	"github.com/mohualzy/VoiceIce/dsp/interp"
)

const (
	// Speech-leaning defaults from SoundTouch's music preset (82/10/28 ms).
	defaultSequenceMs = 82.0
	defaultOverlapMs  = 10.0
	defaultSearchMs   = 28.0

	minSequenceMs = 20.0
	maxSequenceMs = 120.0
	minOverlapMs  = 4.0
	maxOverlapMs  = 60.0
	minSearchMs   = 2.0
	maxSearchMs   = 40.0

	identityEps = 1e-9
	tiny        = 1e-12
)

var (
	// ErrEmptyInput is returned when a processor is handed no samples.
	ErrEmptyInput = errors.New("pitch: empty input")
	// ErrNonFiniteInput is returned when the input holds NaN or Inf.
	ErrNonFiniteInput = errors.New("pitch: non-finite input sample")
)

// Option configures the WSOLA window shared by both processors.
type Option func(*config) error

type config struct {
	sequenceMs float64
	overlapMs  float64
	searchMs   float64
}

func defaultConfig() config {
	return config{
		sequenceMs: defaultSequenceMs,
		overlapMs:  defaultOverlapMs,
		searchMs:   defaultSearchMs,
	}
}

// WithSequence sets the segment length in milliseconds, in [20, 120].
func WithSequence(ms float64) Option {
	return func(cfg *config) error {
		if ms < minSequenceMs || ms > maxSequenceMs || math.IsNaN(ms) {
			return fmt.Errorf("wsola sequence must be in [%g, %g] ms: %f", minSequenceMs, maxSequenceMs, ms)
		}

		cfg.sequenceMs = ms

		return nil
	}
}

// WithOverlap sets the crossfade length in milliseconds, in [4, 60].
func WithOverlap(ms float64) Option {
	return func(cfg *config) error {
		if ms < minOverlapMs || ms > maxOverlapMs || math.IsNaN(ms) {
			return fmt.Errorf("wsola overlap must be in [%g, %g] ms: %f", minOverlapMs, maxOverlapMs, ms)
		}

		cfg.overlapMs = ms

		return nil
	}
}

// WithSearch sets the seek radius in milliseconds, in [2, 40].
func WithSearch(ms float64) Option {
	return func(cfg *config) error {
		if ms < minSearchMs || ms > maxSearchMs || math.IsNaN(ms) {
			return fmt.Errorf("wsola search must be in [%g, %g] ms: %f", minSearchMs, maxSearchMs, ms)
		}

		cfg.searchMs = ms

		return nil
	}
}

// wsola holds the sample-domain window geometry for one sample rate.
type wsola struct {
	sequenceLen int
	overlapLen  int
	searchLen   int
	stepOut     int

	fadeIn  []float64
	fadeOut []float64
}

func newWSOLA(sampleRate float64, opts []Option) (*wsola, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("wsola sample rate must be positive and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.overlapMs >= cfg.sequenceMs {
		return nil, fmt.Errorf("wsola overlap must be smaller than sequence: overlap=%f sequence=%f",
			cfg.overlapMs, cfg.sequenceMs)
	}

	w := &wsola{
		sequenceLen: max(32, int(math.Round(cfg.sequenceMs*0.001*sampleRate))),
		overlapLen:  max(8, int(math.Round(cfg.overlapMs*0.001*sampleRate))),
		searchLen:   max(1, int(math.Round(cfg.searchMs*0.001*sampleRate))),
	}

	if w.overlapLen >= w.sequenceLen {
		return nil, fmt.Errorf("wsola overlap too large for sequence: overlap=%d sequence=%d",
			w.overlapLen, w.sequenceLen)
	}

	w.stepOut = w.sequenceLen - w.overlapLen
	if w.stepOut < 4 {
		return nil, fmt.Errorf("wsola output hop too small: %d", w.stepOut)
	}

	w.fadeIn = make([]float64, w.overlapLen)
	w.fadeOut = make([]float64, w.overlapLen)

	for i := range w.overlapLen {
		t := float64(i) / float64(w.overlapLen-1)
		in := 0.5 - 0.5*math.Cos(math.Pi*t)
		w.fadeIn[i] = in
		w.fadeOut[i] = 1 - in
	}

	return w, nil
}

// stretch returns round(len(input)*factor) samples holding the input
// played factor times longer at its original pitch.
func (w *wsola) stretch(input []float64, factor float64) []float64 {
	targetLen := max(1, int(math.Round(float64(len(input))*factor)))
	nominalInStep := max(1, float64(w.stepOut)/factor)

	nFrames := targetLen/w.stepOut + 4
	out := make([]float64, nFrames*w.stepOut+w.sequenceLen+1)

	for i := range w.sequenceLen {
		out[i] = interp.SampleZero(input, i)
	}

	outLen := w.sequenceLen
	prevStart := 0
	nextNominal := nominalInStep
	ref := make([]float64, w.overlapLen)

	for outLen < targetLen+w.sequenceLen {
		// Natural continuation of the previous segment, which the next
		// segment should resemble for a seamless splice.
		refStart := prevStart + w.stepOut
		for i := range ref {
			ref[i] = interp.SampleZero(input, refStart+i)
		}

		candStart := w.findBestOverlap(ref, input, int(math.Round(nextNominal)))

		outStart := outLen - w.overlapLen
		for i := range w.overlapLen {
			yNew := interp.SampleZero(input, candStart+i)
			out[outStart+i] = out[outStart+i]*w.fadeOut[i] + yNew*w.fadeIn[i]
		}

		for i := w.overlapLen; i < w.sequenceLen; i++ {
			out[outStart+i] = interp.SampleZero(input, candStart+i)
		}

		outLen = outStart + w.sequenceLen
		prevStart = candStart
		nextNominal += nominalInStep

		if prevStart > len(input)+w.sequenceLen && outLen >= targetLen {
			break
		}
	}

	if targetLen <= len(out) {
		return out[:targetLen:targetLen]
	}

	padded := make([]float64, targetLen)
	copy(padded, out)

	return padded
}

// findBestOverlap searches predicted±searchLen for the input offset whose
// first overlapLen samples best match ref by normalized cross-correlation.
func (w *wsola) findBestOverlap(ref, input []float64, predicted int) int {
	best := predicted
	bestScore := math.Inf(-1)

	refEnergy := tiny
	for _, v := range ref {
		refEnergy += v * v
	}

	for cand := predicted - w.searchLen; cand <= predicted+w.searchLen; cand++ {
		dot := 0.0
		candEnergy := tiny

		for i, rv := range ref {
			cv := interp.SampleZero(input, cand+i)
			dot += rv * cv
			candEnergy += cv * cv
		}

		score := dot / math.Sqrt(refEnergy*candEnergy)
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}

	return best
}

func validateInput(input []float64) error {
	if len(input) == 0 {
		return ErrEmptyInput
	}

	if ok, idx := core.AllFinite(input); !ok {
		return fmt.Errorf("%w at index %d", ErrNonFiniteInput, idx)
	}

	return nil
}
