package effects

import "github.com/deadsy/googoomuck-sub000/internal/block"

// MaxDelay is the longest delay time in seconds.
const MaxDelay = 2.0

// Delay is a stereo echo with feedback. Cross routes part of each channel's
// feedback into the other for a ping-pong effect.
type Delay struct {
	bufL, bufR []float32
	pos        int
	feedback   float32
	cross      float32
	wet        float32
}

// NewDelay returns a delay of secs seconds. feedback is limited to 0.95 so
// the echoes always die away.
func NewDelay(sampleRate int, secs, feedback, cross, wet float32) *Delay {
	n := int(clamp(secs, 0, MaxDelay) * float32(sampleRate))
	n = max(n, 1)
	return &Delay{
		bufL:     make([]float32, n),
		bufR:     make([]float32, n),
		feedback: clamp(feedback, 0, 0.95),
		cross:    clamp(cross, 0, 1),
		wet:      clamp(wet, 0, 1),
	}
}

func (d *Delay) Process(l, r []float32) {
	fs := d.feedback * (1 - d.cross)
	fx := d.feedback * d.cross
	dry := 1 - d.wet
	for i := range l {
		dl, dr := d.bufL[d.pos], d.bufR[d.pos]
		d.bufL[d.pos] = l[i] + dl*fs + dr*fx
		d.bufR[d.pos] = r[i] + dr*fs + dl*fx
		if d.pos++; d.pos == len(d.bufL) {
			d.pos = 0
		}
		l[i] = l[i]*dry + dl*d.wet
		r[i] = r[i]*dry + dr*d.wet
	}
}

func (d *Delay) Reset() {
	block.Zero(d.bufL)
	block.Zero(d.bufR)
	d.pos = 0
}
