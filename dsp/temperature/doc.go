// Package temperature maps one scalar control onto a multi-stage voice
// transform.
//
// A [Temperature] in [0.5, 2] drives, in fixed order: a pitch-preserving
// time-stretch, a duration-preserving pitch shift, one tone-shaping
// [Effect] chosen by [Plan] ([Cooling], [Heating] or [Neutral]), and a
// final clamp to [-1, 1]. 1.0 is the identity point.
//
// [Describe] derives the display metrics (intensity, calm, flow, mood)
// from the temperature alone.
package temperature
