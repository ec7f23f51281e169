// Package effects provides stateless sample-level effects used by the
// temperature pipeline.
//
// Included processors:
//   - Saturator: tanh soft-clipping with input drive, dry/wet mix and output level.
//   - Gain: linear gain stage.
package effects
