// Package pitch provides offline WSOLA time-stretching and pitch-shifting.
//
// Included processors:
//   - TimeStretcher: changes duration by a rate factor, pitch preserved.
//   - PitchShifter: changes pitch by a ratio or in semitones, duration preserved.
//
// Both operate on fully materialized mono buffers and return new slices.
// Pathological input (empty or non-finite) is reported as an error rather
// than silently producing garbage.
package pitch
