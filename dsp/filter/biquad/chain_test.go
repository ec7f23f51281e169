package biquad

import "testing"

func twoSectionCoeffs() []Coefficients {
	return []Coefficients{
		{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04},
		{B0: 0.1, B1: 0.2, B2: 0.1, A1: -0.5, A2: 0.1},
	}
}

func TestChain_ProcessBlock_MatchesManualCascade(t *testing.T) {
	coeffs := twoSectionCoeffs()
	s1 := NewSection(coeffs[0])
	s2 := NewSection(coeffs[1])

	input := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8}
	want := make([]float64, len(input))
	for i, x := range input {
		want[i] = s2.ProcessSample(s1.ProcessSample(x))
	}

	chain := NewChain(coeffs)
	block := append([]float64(nil), input...)
	chain.ProcessBlock(block)

	for i := range block {
		if !almostEqual(block[i], want[i], eps) {
			t.Fatalf("sample %d: chain=%.15f, ref=%.15f", i, block[i], want[i])
		}
	}
}

func TestChain_Reset(t *testing.T) {
	input := []float64{1, 0.5, -0.3, 0.7}

	fresh := append([]float64(nil), input...)
	NewChain(twoSectionCoeffs()).ProcessBlock(fresh)

	chain := NewChain(twoSectionCoeffs())
	chain.ProcessBlock([]float64{0.9, -0.4, 0.3})
	chain.Reset()

	again := append([]float64(nil), input...)
	chain.ProcessBlock(again)

	for i := range again {
		if !almostEqual(again[i], fresh[i], eps) {
			t.Fatalf("sample %d after reset: %v, want %v", i, again[i], fresh[i])
		}
	}
}

func TestChain_PrimeSteadyState(t *testing.T) {
	coeffs := twoSectionCoeffs()
	chain := NewChain(coeffs)

	const x = -0.4
	chain.primeSteadyState(x)

	buf := make([]float64, 16)
	for i := range buf {
		buf[i] = x
	}

	chain.ProcessBlock(buf)

	want := x * coeffs[0].DCGain() * coeffs[1].DCGain()
	for i, y := range buf {
		if !almostEqual(y, want, 1e-12) {
			t.Fatalf("sample %d: got %v, want %v", i, y, want)
		}
	}
}
