package lfo

import (
	"math"

	"github.com/deadsy/googoomuck-sub000/internal/dsp"
)

// Waveforms.
const (
	WaveSaw = iota
	WaveSquare
	WaveTriangle
	WaveRandom
	WaveSine
)

// LFO is a low-frequency oscillator producing per-sample modulation.
// A patch keeps one per voice so each note starts its modulation at phase 0.
type LFO struct {
	depth    float32 // output range is [-depth, +depth]; units depend on the target
	rateHz   float32
	waveform int
	phase    uint32 // one cycle is 2^32
	step     uint32
	fs       float32 // sample rate step was computed for
	held     float32 // sample-and-hold value for WaveRandom
	rng      dsp.Rand
}

// Set configures the LFO. Unknown waveforms fall back to triangle.
func (l *LFO) Set(depth, rateHz float32, waveform int) {
	l.depth = depth
	l.rateHz = rateHz
	if waveform < WaveSaw || waveform > WaveSine {
		waveform = WaveTriangle
	}
	l.waveform = waveform
	l.fs = 0
}

// phaseStep returns the phase increment, rounded up so that when the period
// is a whole number of samples the edges land exactly on it.
func (l *LFO) phaseStep(sampleRate float32) uint32 {
	if sampleRate != l.fs {
		ratio := min(max(float64(l.rateHz)/float64(sampleRate), 0), 0.5)
		l.step = uint32(math.Ceil(ratio * (1 << 32)))
		l.fs = sampleRate
	}
	return l.step
}

// Sample advances the LFO by one sample and returns a value in
// [-depth, +depth]. It returns 0 when depth or rate is zero.
func (l *LFO) Sample(sampleRate float32) float32 {
	if !l.Active() || sampleRate == 0 {
		return 0
	}

	p := float32(l.phase) / (1 << 32)
	var v float32
	switch l.waveform {
	case WaveSaw:
		v = 1 - 2*p
	case WaveSquare:
		if l.phase < 1<<31 {
			v = 1
		} else {
			v = -1
		}
	case WaveRandom:
		v = l.held
	case WaveSine:
		v = dsp.SinEval(dsp.Tau * p)
	default:
		if l.phase < 1<<31 {
			v = 4*p - 1
		} else {
			v = 3 - 4*p
		}
	}

	old := l.phase
	l.phase += l.phaseStep(sampleRate)
	if l.waveform == WaveRandom && l.phase < old {
		l.held = l.rng.Float()
	}
	return v * l.depth
}

// Generate fills out with consecutive samples.
func (l *LFO) Generate(out []float32, sampleRate int) {
	if !l.Active() {
		clear(out)
		return
	}
	fs := float32(sampleRate)
	for i := range out {
		out[i] = l.Sample(fs)
	}
}

// Active reports whether the LFO has non-zero depth and rate.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0
}

// Reset zeros the phase.
func (l *LFO) Reset() {
	l.phase = 0
	l.held = 0
}
