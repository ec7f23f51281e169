// Package pass designs lowpass biquad sections and Butterworth cascades.
//
// Designs return []biquad.Coefficients for use with biquad.NewChain or
// biquad.FiltFilt. Invalid parameters yield a zero-valued section or nil.
package pass
