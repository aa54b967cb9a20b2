package dsp

import "github.com/chewxy/math32"

// Pan splits a mono signal into left and right with a constant power law
// (l*l + r*r is constant across the pan range).
type Pan struct {
	l, r float32
}

// Set takes vol in [0, 1.5] (exponential, 1 is unity) and pan in [0, 1]
// (0 hard left, 1 hard right).
func (p *Pan) Set(vol, pan float32) {
	v := math32.Exp2(vol) - 1
	pan = clamp(pan, 0, 1) * Pi / 2
	p.l = v * CosEval(pan)
	p.r = v * SinEval(pan)
}

// Gains returns the left and right gains.
func (p *Pan) Gains() (float32, float32) { return p.l, p.r }

// Generate writes in scaled by the left/right gains.
func (p *Pan) Generate(outL, outR, in []float32) {
	for i, x := range in[:len(outL)] {
		outL[i] = x * p.l
		outR[i] = x * p.r
	}
}
