// Package interp provides fractional-position interpolation used by the
// stretch and pitch stages.
//
//   - [Linear2]:          2-point linear interpolation
//   - [Hermite4]:         4-point cubic Hermite (good default)
//   - [ResampleHermite]:  whole-buffer length change using Hermite4
package interp
