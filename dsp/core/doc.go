// Package core holds small numeric helpers shared by the dsp packages.
package core
