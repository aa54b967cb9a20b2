package dsp

import (
	"math"

	"github.com/chewxy/math32"
)

const (
	cosBits     = 7
	cosSize     = 1 << cosBits
	cosFracBits = 32 - cosBits
	cosFracMask = 1<<cosFracBits - 1
	cosFracStep = 1.0 / (1 << cosFracBits)
	phaseScale  = fullCycle / (2 * math.Pi)
)

// cosTable holds (value, delta to next value) pairs for one cosine cycle.
var cosTable [cosSize * 2]float32

func init() {
	for i := range cosSize {
		y0 := math.Cos(2 * math.Pi * float64(i) / cosSize)
		y1 := math.Cos(2 * math.Pi * float64(i+1) / cosSize)
		cosTable[2*i] = float32(y0)
		cosTable[2*i+1] = float32(y1 - y0)
	}
}

// CosLookup returns cos(2*pi*x/2^32). The high bits of x index the table and
// the low bits interpolate between entries.
func CosLookup(x uint32) float32 {
	idx := (x >> cosFracBits) << 1
	frac := float32(x&cosFracMask) * cosFracStep
	return cosTable[idx] + frac*cosTable[idx+1]
}

func radians(x float32) uint32 {
	x = math32.Mod(math32.Abs(x), Tau)
	return uint32(uint64(float64(x) * phaseScale))
}

// CosEval is a table based cos(x).
func CosEval(x float32) float32 {
	return CosLookup(radians(x))
}

// SinEval is a table based sin(|x|).
func SinEval(x float32) float32 {
	return CosLookup(1<<30 - radians(x))
}

// Sin is a sine oscillator driven by a 32 bit phase accumulator.
type Sin struct {
	x      uint32
	xstep  uint32
	freq   float32
	fscale float32
}

// Init sets the sample rate and frequency and resets the phase.
func (o *Sin) Init(freq float32, sampleRate int) {
	*o = Sin{fscale: freqScale(sampleRate)}
	o.SetFrequency(freq)
}

// SetFrequency changes the frequency without touching the phase.
func (o *Sin) SetFrequency(freq float32) {
	o.freq = freq
	o.xstep = phaseStep(freq, o.fscale)
}

func (o *Sin) Frequency() float32 { return o.freq }

// Phase returns the current phase accumulator.
func (o *Sin) Phase() uint32 { return o.x }

// Generate renders len(out) samples. When fm is non-nil the phase step is
// recomputed each sample from the base frequency plus fm[i] (Hz).
func (o *Sin) Generate(out, fm []float32) {
	if fm == nil {
		for i := range out {
			out[i] = CosLookup(o.x)
			o.x += o.xstep
		}
		return
	}
	for i := range out {
		out[i] = CosLookup(o.x)
		o.x += phaseStep(o.freq+fm[i], o.fscale)
	}
}
