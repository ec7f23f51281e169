// Package printer renders colored CLI output.
package printer

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/mohualzy/VoiceIce/dsp/temperature"
	"github.com/mohualzy/VoiceIce/internal/studio"
	"github.com/mohualzy/VoiceIce/internal/vault"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	blue   = color.New(color.FgBlue)
	faint  = color.New(color.Faint)
)

// Printer writes to an output and an error stream.
type Printer struct {
	out io.Writer
	err io.Writer
}

// New returns a printer over out and errOut.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

// Success prints a green line with a checkmark.
func (p *Printer) Success(format string, a ...any) {
	green.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, a...))
}

// Info prints a plain line.
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.out, format+"\n", a...)
}

// Warning prints a yellow line to the error stream.
func (p *Printer) Warning(format string, a ...any) {
	yellow.Fprintf(p.err, "⚠️  %s\n", fmt.Sprintf(format, a...))
}

// Error prints a titled error with optional suggestions to the error
// stream and returns a plain error carrying the title.
func (p *Printer) Error(title, explanation string, suggestions ...string) error {
	red.Fprintf(p.err, "%s\n\n", title)
	fmt.Fprintf(p.err, "%s\n", explanation)

	switch len(suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(p.err, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(p.err, "\nEither:\n")

		for i, s := range suggestions {
			fmt.Fprintf(p.err, "  %d. %s\n", i+1, s)
		}
	}

	return fmt.Errorf("%s", title)
}

// Blobs lists vault entries, most recent first, marking the current one.
func (p *Printer) Blobs(blobs []vault.Blob, current string) {
	if len(blobs) == 0 {
		faint.Fprintln(p.out, "vault is empty")
		return
	}

	width := 0
	for _, b := range blobs {
		width = max(width, len(b.Name))
	}

	for _, b := range blobs {
		marker := " "
		if b.Name == current {
			marker = green.Sprint("▶")
		}

		fmt.Fprintf(p.out, "%s %-*s  %9s  %-9s  %s\n", marker, width, b.Name,
			humanize.Bytes(uint64(b.Size())), b.Kind, faint.Sprint(humanize.RelTime(b.Added, time.Now(), "ago", "from now")))
	}
}

// Report prints the mood gauges for a temperature.
func (p *Printer) Report(r temperature.Report) {
	moodColor := cyan
	switch r.Mood {
	case temperature.MoodBlaze:
		moodColor = red
	case temperature.MoodEmber:
		moodColor = blue
	}

	moodColor.Fprintf(p.out, "%s  %s\n", strings.ToUpper(string(r.Mood)), r.Caption)
	fmt.Fprintf(p.out, "  temperature %.2f\n", float64(r.Temperature))
	fmt.Fprintf(p.out, "  intensity   %s %5.1f%%\n", bar(r.Intensity, 100), r.Intensity)
	fmt.Fprintf(p.out, "  calm        %s %5.1f%%\n", bar(r.Calm, 100), r.Calm)
	fmt.Fprintf(p.out, "  flow        %s %5.2f\n", bar(r.Flow, 2), r.Flow)
	faint.Fprintf(p.out, "  %s\n", r.Hint)
}

// Analysis prints a before/after level summary.
func (p *Printer) Analysis(a studio.Analysis) {
	o, t := a.Original, a.Transformed

	fmt.Fprintf(p.out, "%s\n", cyan.Sprint(a.Name))
	fmt.Fprintf(p.out, "  %-10s %10s %10s\n", "", "original", "result")
	fmt.Fprintf(p.out, "  %-10s %10s %10s\n", "duration",
		fmt.Sprintf("%.2fs", o.Stats.Seconds), fmt.Sprintf("%.2fs", t.Stats.Seconds))
	fmt.Fprintf(p.out, "  %-10s %10s %10s\n", "rms", dB(o.Stats.RMS_dB), dB(t.Stats.RMS_dB))
	fmt.Fprintf(p.out, "  %-10s %10s %10s\n", "peak", dB(o.Stats.Peak_dB), dB(t.Stats.Peak_dB))
	fmt.Fprintf(p.out, "  %-10s %10s %10s\n", "voiced",
		fmt.Sprintf("%.0f%%", 100*o.Stats.Active), fmt.Sprintf("%.0f%%", 100*t.Stats.Active))
	fmt.Fprintf(p.out, "  %-10s %10s %10s\n", "clipped", humanize.Comma(int64(o.Stats.Clipped)), humanize.Comma(int64(t.Stats.Clipped)))
	fmt.Fprintf(p.out, "  %-10s %10s\n", "high band", dB(a.HighBandDB))
}

func bar(v, full float64) string {
	const width = 20

	n := int(math.Round(width * math.Max(0, math.Min(v, full)) / full))

	return "[" + strings.Repeat("█", n) + strings.Repeat("·", width-n) + "]"
}

func dB(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf dB"
	}

	if math.IsInf(v, 1) || math.IsNaN(v) {
		return "-"
	}

	return fmt.Sprintf("%+.1f dB", v)
}
