// Package testutil provides reproducible test signals and sample-buffer
// assertions shared by the dsp and internal test suites.
package testutil
