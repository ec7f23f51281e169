package biquad

// Chain is an ordered cascade of biquad sections processed in series.
type Chain struct {
	sections []Section
}

// NewChain creates a cascade with one Section per coefficient set.
func NewChain(coeffs []Coefficients) *Chain {
	c := &Chain{sections: make([]Section, len(coeffs))}
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}

	return c
}

// ProcessBlock filters buf in-place through the full cascade.
func (c *Chain) ProcessBlock(buf []float64) {
	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// Reset clears every section's state.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// primeSteadyState sets every section to the state it would hold after an
// infinitely long constant input x. Each section sees the previous
// section's DC output.
func (c *Chain) primeSteadyState(x float64) {
	for i := range c.sections {
		s := &c.sections[i]
		s.SetState(s.SteadyState(x))
		x *= s.DCGain()
	}
}
