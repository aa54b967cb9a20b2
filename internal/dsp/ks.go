package dsp

// Karplus-Strong plucked string.
//
// The delay line has a fixed size and is stepped through with a 32 bit phase,
// so the step size sets the pitch. Output is interpolated between adjacent
// entries. Each time the read position moves past an entry that entry is
// replaced with the attenuated average of it and its neighbour.

const (
	ksDelayBits = 8
	ksDelaySize = 1 << ksDelayBits
	ksDelayMask = ksDelaySize - 1
	ksFracBits  = 32 - ksDelayBits
	ksFracMask  = 1<<ksFracBits - 1
	ksFracScale = 1.0 / (1 << ksFracBits)
	ksAttenuate = 0.99
)

// KS is a Karplus-Strong string model.
type KS struct {
	delay  [ksDelaySize]float32
	x      uint32
	xstep  uint32
	k      float32
	freq   float32
	fscale float32
}

// Init resets the string at the given sample rate with the default
// attenuation and a silent delay line.
func (o *KS) Init(sampleRate int) {
	*o = KS{fscale: freqScale(sampleRate)}
	o.SetAttenuation(ksAttenuate)
}

// SetAttenuation sets the per-pass loss; 1 sustains forever, lower values
// decay faster.
func (o *KS) SetAttenuation(a float32) {
	o.k = 0.5 * a
}

func (o *KS) SetFrequency(freq float32) {
	o.freq = freq
	o.xstep = phaseStep(freq, o.fscale)
}

// Pluck fills the delay line with random values in [-1, 1] whose running
// sum stays bounded and whose total is zero, so repeated filtering decays
// every entry to silence.
func (o *KS) Pluck(rng *Rand) {
	var sum float32
	for i := 0; i < ksDelaySize-1; i++ {
		val := rng.Float()
		if x := sum + val; x > 1 || x < -1 {
			val = -val
		}
		sum += val
		o.delay[i] = val
	}
	o.delay[ksDelaySize-1] = -sum
}

// energy returns the sum of squares of the delay line.
func (o *KS) energy() float32 {
	var e float32
	for _, v := range o.delay {
		e += v * v
	}
	return e
}

// Generate renders len(out) samples.
func (o *KS) Generate(out []float32) {
	for i := range out {
		x0 := o.x >> ksFracBits
		x1 := (x0 + 1) & ksDelayMask
		y0 := o.delay[x0]
		y1 := o.delay[x1]
		out[i] = y0 + (y1-y0)*ksFracScale*float32(o.x&ksFracMask)
		o.x += o.xstep
		if x0 != o.x>>ksFracBits {
			o.delay[x0] = o.k * (y0 + y1)
		}
	}
}
