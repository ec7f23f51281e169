package printer

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/mohualzy/VoiceIce/dsp/temperature"
	"github.com/mohualzy/VoiceIce/internal/studio"
	"github.com/mohualzy/VoiceIce/internal/vault"
	timestats "github.com/mohualzy/VoiceIce/stats/time"
)

func newTestPrinter(t *testing.T) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var out, errOut bytes.Buffer

	return New(&out, &errOut), &out, &errOut
}

func TestMessages(t *testing.T) {
	p, out, errOut := newTestPrinter(t)

	p.Success("rendered %s", "a.wav")
	p.Info("plain %d", 3)
	p.Warning("careful")

	assert.Equal(t, "✓ rendered a.wav\nplain 3\n", out.String())
	assert.Contains(t, errOut.String(), "careful")
}

func TestError(t *testing.T) {
	p, _, errOut := newTestPrinter(t)

	err := p.Error("decode failed", "notes.txt is not audio", "upload a WAV file", "upload an MP3 file")
	assert.EqualError(t, err, "decode failed")

	s := errOut.String()
	assert.Contains(t, s, "decode failed\n\nnotes.txt is not audio\n")
	assert.Contains(t, s, "Either:\n  1. upload a WAV file\n  2. upload an MP3 file\n")
}

func TestBlobs(t *testing.T) {
	p, out, _ := newTestPrinter(t)

	p.Blobs(nil, "")
	assert.Equal(t, "vault is empty\n", out.String())
	out.Reset()

	now := time.Now()
	p.Blobs([]vault.Blob{
		{Name: "rec-1.wav", Data: make([]byte, 2048), Kind: vault.KindRecording, Added: now},
		{Name: "a.wav", Data: make([]byte, 10), Kind: vault.KindUpload, Added: now},
	}, "a.wav")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "2.0 kB")
	assert.Contains(t, lines[0], "recording")
	assert.True(t, strings.HasPrefix(lines[1], "▶ a.wav"))
}

func TestReport(t *testing.T) {
	p, out, _ := newTestPrinter(t)

	p.Report(temperature.Describe(2))

	s := out.String()
	assert.Contains(t, s, "BLAZE")
	assert.Contains(t, s, "96.0%")
	assert.Contains(t, s, "["+strings.Repeat("█", 19)+"·]")
}

func TestAnalysis(t *testing.T) {
	p, out, _ := newTestPrinter(t)

	p.Analysis(studio.Analysis{
		Name: "tone.wav",
		Original: studio.View{
			Stats: timestats.Stats{Seconds: 2, RMS_dB: -3, Peak_dB: 0, Active: 0.5, Clipped: 1200},
		},
		Transformed: studio.View{
			Stats: timestats.Stats{Seconds: 1.75, RMS_dB: math.Inf(-1), Peak_dB: -1.5, Active: 0.25},
		},
		HighBandDB: -31.25,
	})

	s := out.String()
	assert.Contains(t, s, "2.00s")
	assert.Contains(t, s, "1.75s")
	assert.Contains(t, s, "-inf dB")
	assert.Contains(t, s, "-31.2 dB")
	assert.Contains(t, s, "1,200")
	assert.Contains(t, s, "25%")
}
