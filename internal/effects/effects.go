// Package effects holds the master bus processors applied to the mixed
// stereo block before it is converted to output samples.
package effects

// Effect processes a stereo block in place.
type Effect interface {
	Process(l, r []float32)
	Reset()
}

// Chain applies effects in order.
type Chain struct {
	fx []Effect
}

func NewChain(fx ...Effect) *Chain {
	return &Chain{fx: fx}
}

func (c *Chain) Add(e Effect) { c.fx = append(c.fx, e) }

// Len returns the number of effects in the chain.
func (c *Chain) Len() int { return len(c.fx) }

func (c *Chain) Process(l, r []float32) {
	for _, e := range c.fx {
		e.Process(l, r)
	}
}

func (c *Chain) Reset() {
	for _, e := range c.fx {
		e.Reset()
	}
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
