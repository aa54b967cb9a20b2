package dsp

// Goom waves are built from four segments per cycle: a falling half cosine,
// a flat bottom, a rising half cosine and a flat top. Duty splits the cycle
// between the two halves and slope splits each half between curve and flat.
// See https://www.quinapalus.com/goom.html.

const (
	// closest the duty cycle can get to 0 or 100%
	tpMin = 0.05
	// steepest allowed slope
	slopeMin = 0.1
)

// GWave is a goom wave oscillator.
type GWave struct {
	x      uint32
	xstep  uint32
	tp     uint32  // phase where the rising half starts
	k0, k1 float64 // phase to lookup scaling for each half
	freq   float32
	fscale float32
}

// Init resets the oscillator with a symmetric shape (a plain sine).
func (o *GWave) Init(freq float32, sampleRate int) {
	*o = GWave{fscale: freqScale(sampleRate)}
	o.SetFrequency(freq)
	o.SetShape(0.5, 1)
}

func (o *GWave) SetFrequency(freq float32) {
	o.freq = freq
	o.xstep = phaseStep(freq, o.fscale)
}

func (o *GWave) Frequency() float32 { return o.freq }

func (o *GWave) Phase() uint32 { return o.x }

// SetShape sets duty and slope, both in [0, 1].
func (o *GWave) SetShape(duty, slope float32) {
	duty = clamp(duty, 0, 1)
	slope = clamp(slope, 0, 1)
	o.tp = uint32(fullCycle * float64(Lerp(duty, tpMin, 1-tpMin)))
	s := float64(Lerp(slope, slopeMin, 1))
	o.k0 = halfCycle / (float64(o.tp) * s)
	o.k1 = halfCycle / ((fullCycle - float64(o.tp)) * s)
}

func (o *GWave) sample() float32 {
	var x float64
	var ofs uint32
	if o.x < o.tp {
		x = float64(o.x) * o.k0
	} else {
		x = float64(o.x-o.tp) * o.k1
		ofs = halfCycle
	}
	if x > halfCycle-1 {
		x = halfCycle - 1
	}
	return CosLookup(uint32(x) + ofs)
}

// Generate renders len(out) samples, with optional frequency modulation.
func (o *GWave) Generate(out, fm []float32) {
	if fm == nil {
		for i := range out {
			out[i] = o.sample()
			o.x += o.xstep
		}
		return
	}
	for i := range out {
		out[i] = o.sample()
		o.x += phaseStep(o.freq+fm[i], o.fscale)
	}
}
