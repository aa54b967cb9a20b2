package effects

import "github.com/chewxy/math32"

// Drive is tanh soft clipping followed by an optional one pole low pass to
// take the edge off the added harmonics.
type Drive struct {
	pre, post float32
	alpha     float32 // 0 disables the filter
	zl, zr    float32
}

// NewDrive returns a drive stage. cutoff is in Hz; 0 or anything at or
// above Nyquist disables the filter.
func NewDrive(sampleRate int, pre, post, cutoff float32) *Drive {
	d := &Drive{pre: pre, post: post}
	if fs := float32(sampleRate); cutoff > 0 && cutoff < fs/2 {
		rc := 1 / (2 * math32.Pi * cutoff)
		dt := 1 / fs
		d.alpha = dt / (rc + dt)
	}
	return d
}

func (d *Drive) Process(l, r []float32) {
	for i := range l {
		x := math32.Tanh(l[i]*d.pre) * d.post
		y := math32.Tanh(r[i]*d.pre) * d.post
		if d.alpha > 0 {
			d.zl += d.alpha * (x - d.zl)
			d.zr += d.alpha * (y - d.zr)
			x, y = d.zl, d.zr
		}
		l[i], r[i] = x, y
	}
}

func (d *Drive) Reset() { d.zl, d.zr = 0, 0 }
