package effects

import "github.com/chewxy/math32"

// Compressor is a stereo linked peak compressor. Both channels share one
// envelope so the image does not shift under gain reduction.
type Compressor struct {
	threshold float32 // linear
	slope     float32 // 1/ratio - 1
	attack    float32
	release   float32
	makeup    float32
	env       float32
}

// NewCompressor takes the threshold and makeup gain in dB and the attack and
// release times in seconds.
func NewCompressor(sampleRate int, thresholdDB, ratio, attack, release, makeupDB float32) *Compressor {
	fs := float32(sampleRate)
	ratio = max(ratio, 1)
	return &Compressor{
		threshold: dbToGain(thresholdDB),
		slope:     1/ratio - 1,
		attack:    coef(attack, fs),
		release:   coef(release, fs),
		makeup:    dbToGain(makeupDB),
	}
}

func dbToGain(db float32) float32 { return math32.Pow(10, db/20) }

func coef(t, fs float32) float32 {
	if t <= 0 {
		return 1
	}
	return 1 - math32.Exp(-1/(t*fs))
}

// Gain returns the current gain reduction, excluding makeup.
func (c *Compressor) Gain() float32 {
	if c.env <= c.threshold {
		return 1
	}
	return math32.Pow(c.env/c.threshold, c.slope)
}

func (c *Compressor) Process(l, r []float32) {
	for i := range l {
		peak := max(math32.Abs(l[i]), math32.Abs(r[i]))
		k := c.release
		if peak > c.env {
			k = c.attack
		}
		c.env += k * (peak - c.env)
		g := c.Gain() * c.makeup
		l[i] *= g
		r[i] *= g
	}
}

func (c *Compressor) Reset() { c.env = 0 }
