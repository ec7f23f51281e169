package temperature

import (
	"math"
	"testing"
)

func TestDescribe(t *testing.T) {
	cases := []struct {
		t         Temperature
		intensity float64
		calm      float64
		mood      Mood
	}{
		{0.5, 0, 100, MoodEmber},
		{0.79, 0, 100, MoodEmber},
		{0.8, 0, 100, MoodSteady},
		{1.0, 16, 84, MoodSteady},
		{1.2, 32, 68, MoodSteady},
		{1.21, 32.8, 67.2, MoodBlaze},
		{2.0, 96, 4, MoodBlaze},
	}

	for _, tc := range cases {
		r := Describe(tc.t)

		if math.Abs(r.Intensity-tc.intensity) > 1e-9 || math.Abs(r.Calm-tc.calm) > 1e-9 {
			t.Fatalf("Describe(%v): intensity=%v calm=%v, want %v/%v", tc.t, r.Intensity, r.Calm, tc.intensity, tc.calm)
		}

		if r.Mood != tc.mood {
			t.Fatalf("Describe(%v): mood=%v, want %v", tc.t, r.Mood, tc.mood)
		}

		if r.Flow != float64(tc.t) || r.Hint == "" || r.Caption == "" {
			t.Fatalf("Describe(%v) = %+v", tc.t, r)
		}
	}
}

func TestDescribeIsPureAndClamped(t *testing.T) {
	if Describe(1.37) != Describe(1.37) {
		t.Fatal("Describe is not deterministic")
	}

	if Describe(9) != Describe(MaxTemperature) {
		t.Fatal("Describe should clamp its input")
	}

	for x := 0.5; x <= 2; x += 0.05 {
		r := Describe(Temperature(x))
		if r.Intensity < 0 || r.Calm < 0 || r.Calm > 100 {
			t.Fatalf("Describe(%v) out of range: %+v", x, r)
		}
	}
}
