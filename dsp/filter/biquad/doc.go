// Package biquad provides second-order IIR sections and cascades.
//
// A [Section] runs Direct Form II Transposed over a single set of
// [Coefficients]. A [Chain] cascades sections for higher orders, and
// [FiltFilt] runs a cascade forward and backward for zero-phase output.
//
// Coefficient design lives in dsp/filter/design/pass.
package biquad
