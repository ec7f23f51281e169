package studio

import (
	"context"
	"fmt"
	"math"

	"github.com/mohualzy/VoiceIce/dsp/core"
	"github.com/mohualzy/VoiceIce/dsp/spectrum"
	"github.com/mohualzy/VoiceIce/dsp/temperature"
	"github.com/mohualzy/VoiceIce/dsp/window"
	timestats "github.com/mohualzy/VoiceIce/stats/time"
)

const (
	defaultWaveformPoints = 1000
	defaultFFTSize        = 2048
	defaultHop            = 512
	defaultHighBandHz     = 1200

	// spectrogramFloorDB limits the displayed dynamic range below the peak.
	spectrogramFloorDB = -80.0
)

// Envelope is a min/max waveform reduced to a fixed number of points.
type Envelope struct {
	Min, Max []float64
	// SamplesPerPoint is the number of input samples folded into a point.
	SamplesPerPoint float64
	SampleRate      int
}

// Waveform folds samples into at most points min/max pairs. Short inputs
// keep one point per sample.
func Waveform(samples []float64, sampleRate, points int) Envelope {
	n := len(samples)
	if points <= 0 || n == 0 {
		return Envelope{SampleRate: sampleRate}
	}

	points = min(points, n)
	env := Envelope{
		Min:             make([]float64, points),
		Max:             make([]float64, points),
		SamplesPerPoint: float64(n) / float64(points),
		SampleRate:      sampleRate,
	}

	for p := range points {
		lo := p * n / points
		hi := max(lo+1, (p+1)*n/points)

		mn, mx := samples[lo], samples[lo]
		for _, v := range samples[lo+1 : hi] {
			mn = math.Min(mn, v)
			mx = math.Max(mx, v)
		}

		env.Min[p], env.Max[p] = mn, mx
	}

	return env
}

// Grid is a spectrogram in dB relative to its loudest bin, one row per
// frame, floored at -80 dB.
type Grid struct {
	DB      [][]float64
	FFTSize int
	Hop     int
	BinHz   float64
	// FrameSeconds is the hop duration.
	FrameSeconds float64
}

// Spectrogram computes a Hann-windowed STFT magnitude of samples.
func Spectrogram(samples []float64, sampleRate, fftSize, hop int) (Grid, error) {
	if sampleRate <= 0 {
		return Grid{}, fmt.Errorf("spectrogram sample rate must be positive: %d", sampleRate)
	}

	frames, err := spectrum.STFT(samples, fftSize, hop, window.TypeHann, spectrum.STFTMagnitude)
	if err != nil {
		return Grid{}, err
	}

	peak := 0.0
	for _, row := range frames.Values {
		for _, m := range row {
			peak = math.Max(peak, m)
		}
	}

	grid := Grid{
		DB:           make([][]float64, len(frames.Values)),
		FFTSize:      fftSize,
		Hop:          hop,
		BinHz:        frames.BinHz(float64(sampleRate)),
		FrameSeconds: float64(hop) / float64(sampleRate),
	}

	for i, row := range frames.Values {
		out := make([]float64, len(row))

		for k, m := range row {
			db := spectrogramFloorDB
			if peak > 0 && m > 0 {
				db = math.Max(spectrogramFloorDB, core.LinearToDB(m/peak))
			}

			out[k] = db
		}

		grid.DB[i] = out
	}

	return grid, nil
}

// AnalysisOptions sizes the analysis views. Zero fields take defaults:
// 1000 waveform points, 2048-point FFT, 512-sample hop, 1200 Hz high band.
type AnalysisOptions struct {
	WaveformPoints int
	FFTSize        int
	Hop            int
	HighBandHz     float64
}

func (o AnalysisOptions) withDefaults() AnalysisOptions {
	if o.WaveformPoints <= 0 {
		o.WaveformPoints = defaultWaveformPoints
	}

	if o.FFTSize <= 0 {
		o.FFTSize = defaultFFTSize
	}

	if o.Hop <= 0 {
		o.Hop = defaultHop
	}

	if o.HighBandHz <= 0 {
		o.HighBandHz = defaultHighBandHz
	}

	return o
}

// View is the analysis of one buffer.
type View struct {
	Waveform    Envelope
	Spectrogram Grid
	Stats       timestats.Stats
	// HighBand is the mean frame power above the high-band edge.
	HighBand float64
}

// Analysis compares a target before and after the transform.
type Analysis struct {
	Name        string
	Report      temperature.Report
	Original    View
	Transformed View
	// HighBandDB is the transformed high-band power relative to the
	// original, negative when attenuated.
	HighBandDB float64
}

// Analyze transforms the current target and builds both views.
func (s *Session) Analyze(ctx context.Context, opts AnalysisOptions) (Analysis, error) {
	opts = opts.withDefaults()

	r, err := s.Transformed(ctx)
	if err != nil {
		return Analysis{}, err
	}

	orig, err := analyzeBuffer(r.Original.Samples, r.Original.SampleRate, opts)
	if err != nil {
		return Analysis{}, fmt.Errorf("studio: analyze original: %w", err)
	}

	out, err := analyzeBuffer(r.Transformed.Samples, r.Transformed.SampleRate, opts)
	if err != nil {
		return Analysis{}, fmt.Errorf("studio: analyze transformed: %w", err)
	}

	ratio := math.Inf(1)
	if orig.HighBand > 0 {
		ratio = core.LinearPowerToDB(out.HighBand / orig.HighBand)
	}

	return Analysis{
		Name:        r.Name,
		Report:      temperature.Describe(r.Temperature),
		Original:    orig,
		Transformed: out,
		HighBandDB:  ratio,
	}, nil
}

func analyzeBuffer(samples []float64, sampleRate int, opts AnalysisOptions) (View, error) {
	grid, err := Spectrogram(samples, sampleRate, opts.FFTSize, opts.Hop)
	if err != nil {
		return View{}, err
	}

	high, err := spectrum.BandEnergy(samples, float64(sampleRate), opts.HighBandHz, float64(sampleRate)/2)
	if err != nil {
		return View{}, err
	}

	return View{
		Waveform:    Waveform(samples, sampleRate, opts.WaveformPoints),
		Spectrogram: grid,
		Stats:       timestats.Calculate(samples, sampleRate),
		HighBand:    high,
	}, nil
}
