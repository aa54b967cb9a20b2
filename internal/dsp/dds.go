package dsp

import (
	"errors"
	"math"
	"math/bits"

	"github.com/chewxy/math32"
)

// ErrTableSize is returned for wave tables that are not a power of two long.
var ErrTableSize = errors.New("dsp: wave table length must be a power of two >= 2")

const sinTableBits = 6

// sinTable is one cycle of a cosine, without interpolation deltas.
var sinTable [1 << sinTableBits]float32

func init() {
	for i := range sinTable {
		sinTable[i] = float32(math.Cos(2 * math.Pi * float64(i) / float64(len(sinTable))))
	}
}

// DDS is a direct digital synthesis oscillator reading an arbitrary single
// cycle wave table with linear interpolation.
type DDS struct {
	table     []float32
	tableMask uint32
	fracBits  uint32
	fracMask  uint32
	fracScale float32

	amp    float32
	freq   float32
	fscale float32
	x      uint32
	xstep  uint32
}

// InitSin sets up a sine DDS with the given amplitude, frequency and start
// phase (radians).
func (o *DDS) InitSin(amp, freq, phase float32, sampleRate int) {
	*o = DDS{amp: amp, fscale: freqScale(sampleRate)}
	_ = o.SetTable(sinTable[:])
	o.SetFrequency(freq)
	o.x = uint32(uint64(float64(math32.Mod(math32.Abs(phase), Tau)) * phaseScale))
}

// SetTable replaces the wave table. The table is referenced, not copied.
func (o *DDS) SetTable(table []float32) error {
	n := len(table)
	if n < 2 || n&(n-1) != 0 {
		return ErrTableSize
	}
	b := uint32(bits.TrailingZeros(uint(n)))
	o.table = table
	o.tableMask = uint32(n - 1)
	o.fracBits = 32 - b
	o.fracMask = 1<<o.fracBits - 1
	o.fracScale = float32(1 / float64(uint64(1)<<o.fracBits))
	return nil
}

func (o *DDS) SetFrequency(freq float32) {
	o.freq = freq
	o.xstep = phaseStep(freq, o.fscale)
}

func (o *DDS) Phase() uint32 { return o.x }

func (o *DDS) sample() float32 {
	x0 := o.x >> o.fracBits
	x1 := (x0 + 1) & o.tableMask
	y0 := o.table[x0]
	y1 := o.table[x1]
	return o.amp * (y0 + (y1-y0)*o.fracScale*float32(o.x&o.fracMask))
}

// Generate renders without modulation.
func (o *DDS) Generate(out []float32) {
	for i := range out {
		out[i] = o.sample()
		o.x += o.xstep
	}
}

// GenerateAM renders and multiplies by the amplitude envelope am.
func (o *DDS) GenerateAM(out, am []float32) {
	for i := range out {
		out[i] = o.sample() * am[i]
		o.x += o.xstep
	}
}

// GenerateFMAM applies frequency modulation followed by amplitude modulation.
func (o *DDS) GenerateFMAM(out, fm, am []float32) {
	for i := range out {
		out[i] = o.sample() * am[i]
		o.x += phaseStep(o.freq+fm[i], o.fscale)
	}
}
