package dsp

import "math/rand/v2"

// Rand is an allocation free noise source. The zero value is ready to use.
type Rand struct {
	pcg rand.PCG
}

// Seed resets the generator.
func (r *Rand) Seed(seed uint64) {
	r.pcg.Seed(seed, seed^0x9e3779b97f4a7c15)
}

// Float returns a uniform value in [-1, 1).
func (r *Rand) Float() float32 {
	return float32(int32(r.pcg.Uint64()>>32)) * (1.0 / (1 << 31))
}
