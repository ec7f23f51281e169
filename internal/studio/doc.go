// Package studio is the per-session control surface: it owns one vault,
// shares the process decode cache and pipeline, and turns the current
// target into transformed audio, a mood report and analysis views.
package studio
