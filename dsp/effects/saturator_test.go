package effects

import (
	"math"
	"testing"
)

func TestSaturatorValidation(t *testing.T) {
	if _, err := NewSaturator(WithSaturatorDrive(100)); err == nil {
		t.Fatal("expected error for drive above range")
	}

	if _, err := NewSaturator(WithSaturatorDrive(math.NaN())); err == nil {
		t.Fatal("expected error for NaN drive")
	}

	s, err := NewSaturator(nil, WithSaturatorDrive(3))
	if err != nil {
		t.Fatalf("NewSaturator() error = %v", err)
	}

	if got, want := s.ProcessSample(0.5), math.Tanh(1.5); got != want {
		t.Fatalf("drive 3: got %g, want %g", got, want)
	}

	def, _ := NewSaturator()
	if got, want := def.ProcessSample(0.5), math.Tanh(0.5); got != want {
		t.Fatalf("default drive: got %g, want %g", got, want)
	}
}

func TestSaturatorTanhTransferCurve(t *testing.T) {
	s, err := NewSaturator(WithSaturatorDrive(2.5))
	if err != nil {
		t.Fatalf("NewSaturator() error = %v", err)
	}

	for _, in := range []float64{-2, -0.5, 0, 0.25, 0.9, 3} {
		want := math.Tanh(2.5 * in)
		if got := s.ProcessSample(in); math.Abs(got-want) > 1e-15 {
			t.Fatalf("in=%g: got %g, want %g", in, got, want)
		}
	}
}

func TestSaturatorBoundedAndOddSymmetric(t *testing.T) {
	s, err := NewSaturator(WithSaturatorDrive(20))
	if err != nil {
		t.Fatalf("NewSaturator() error = %v", err)
	}

	for _, in := range []float64{0.01, 0.3, 1, 10, 1e6} {
		pos := s.ProcessSample(in)
		neg := s.ProcessSample(-in)

		if math.Abs(pos) > 1 {
			t.Fatalf("in=%g: |out|=%g exceeds 1", in, pos)
		}

		if pos != -neg {
			t.Fatalf("in=%g: not odd-symmetric (%g vs %g)", in, pos, neg)
		}
	}
}

func TestSaturatorMoreDriveMoreCompression(t *testing.T) {
	prev := math.Inf(1)

	for _, drive := range []float64{1, 2, 3, 5} {
		s, _ := NewSaturator(WithSaturatorDrive(drive))

		// Ratio of a quiet sample's gain to a loud one's: shrinks as drive rises.
		ratio := s.ProcessSample(1) / (s.ProcessSample(0.1) * 10)
		if ratio >= prev {
			t.Fatalf("drive %v: ratio %g not below %g", drive, ratio, prev)
		}

		prev = ratio
	}
}

func TestSaturatorProcessInPlace(t *testing.T) {
	s, err := NewSaturator(WithSaturatorDrive(4))
	if err != nil {
		t.Fatalf("NewSaturator() error = %v", err)
	}

	buf := []float64{-1.2, -0.5, 0, 0.4, math.Inf(1)}
	want := make([]float64, len(buf))
	for i, x := range buf {
		want[i] = s.ProcessSample(x)
	}

	s.ProcessInPlace(buf)

	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("sample %d: got %g, want %g", i, buf[i], want[i])
		}
	}
}
