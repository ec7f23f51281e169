// Package player plays transformed audio on the default output device.
//
// Builds tagged nocgo get a stub whose Play always returns ErrUnavailable.
package player

import (
	"errors"
	"math"
	"time"

	"github.com/mohualzy/VoiceIce/dsp/interp"
	"github.com/mohualzy/VoiceIce/internal/codec"
)

// DeviceRate is the output sample rate of the playback context.
const DeviceRate = 44100

// ErrUnavailable is returned when no audio device can be opened.
var ErrUnavailable = errors.New("player: audio output unavailable")

// Prepare converts buf into mono 16-bit little-endian PCM at rate,
// resampling with Hermite interpolation when the rates differ.
func Prepare(buf codec.Buffer, rate int) []byte {
	samples := buf.Samples
	if buf.SampleRate > 0 && rate > 0 && buf.SampleRate != rate && len(samples) > 0 {
		n := int(math.Round(float64(len(samples)) * float64(rate) / float64(buf.SampleRate)))
		samples = interp.ResampleHermite(samples, max(n, 1))
	}

	return codec.PCM16(codec.Buffer{Samples: samples, SampleRate: rate})
}

// Duration returns the playing time of n bytes of prepared PCM.
func Duration(n int) time.Duration {
	return time.Duration(n/2) * time.Second / DeviceRate
}
