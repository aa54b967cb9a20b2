// Package dsp holds the oscillator, envelope, noise and filter primitives that
// patches are assembled from.
//
// Every primitive is a small value type owned by one voice. Generate methods
// render len(out) samples and keep their state between calls, so rendering k
// blocks of n samples is identical to rendering one block of k*n samples.
package dsp

import "github.com/chewxy/math32"

const (
	Pi  = math32.Pi
	Tau = 2 * math32.Pi
)

const (
	fullCycle = 1 << 32
	halfCycle = 1 << 31
)

// freqScale returns the phase-accumulator scaling for a sample rate (2^32/fs).
func freqScale(sampleRate int) float32 {
	return float32(fullCycle / float64(sampleRate))
}

// phaseStep converts a frequency to a 32 bit phase increment. Negative
// frequencies wrap, which runs the oscillator backwards.
func phaseStep(freq, scale float32) uint32 {
	return uint32(int64(freq * scale))
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lerp maps x in [0, 1] onto [a, b].
func Lerp(x, a, b float32) float32 {
	return a + (b-a)*x
}
