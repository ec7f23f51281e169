// Package spectrum provides short-time spectral analysis.
//
// Bin magnitude and power kernels run on algo-vecmath; frame transforms
// use algo-fft plans. STFT frames a buffer into windowed magnitude rows
// and BandEnergy measures how much power a signal carries between two
// frequencies.
package spectrum
