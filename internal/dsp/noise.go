package dsp

// NoiseKind selects a noise colour.
type NoiseKind int

const (
	White NoiseKind = iota // flat spectrum
	Pink1                  // 1/f, three pole approximation
	Pink2                  // 1/f, Paul Kellet's refined filter
	Brown                  // 1/f^2
)

func (k NoiseKind) String() string {
	switch k {
	case White:
		return "white"
	case Pink1:
		return "pink1"
	case Pink2:
		return "pink2"
	case Brown:
		return "brown"
	}
	return "unknown"
}

// Noise generates white, pink or brown noise. Filter state persists across
// calls, so a Noise should keep generating the same kind.
type Noise struct {
	rng                        Rand
	b0, b1, b2, b3, b4, b5, b6 float32
}

// Init clears the filter state and seeds the generator.
func (n *Noise) Init(seed uint64) {
	*n = Noise{}
	n.rng.Seed(seed)
}

// Generate renders len(out) samples of the given kind.
func (n *Noise) Generate(kind NoiseKind, out []float32) {
	switch kind {
	case Pink1:
		n.pink1(out)
	case Pink2:
		n.pink2(out)
	case Brown:
		n.brown(out)
	default:
		n.white(out)
	}
}

func (n *Noise) white(out []float32) {
	for i := range out {
		out[i] = n.rng.Float()
	}
}

func (n *Noise) brown(out []float32) {
	b0 := n.b0
	for i := range out {
		w := n.rng.Float()
		b0 = (b0 + 0.02*w) * (1 / 1.02)
		out[i] = b0 * (1 / 0.38)
	}
	n.b0 = b0
}

func (n *Noise) pink1(out []float32) {
	b0, b1, b2 := n.b0, n.b1, n.b2
	for i := range out {
		w := n.rng.Float()
		b0 = 0.99765*b0 + w*0.0990460
		b1 = 0.96300*b1 + w*0.2965164
		b2 = 0.57000*b2 + w*1.0526913
		out[i] = (b0 + b1 + b2 + w*0.1848) * (1 / 10.4)
	}
	n.b0, n.b1, n.b2 = b0, b1, b2
}

func (n *Noise) pink2(out []float32) {
	b0, b1, b2, b3, b4, b5, b6 := n.b0, n.b1, n.b2, n.b3, n.b4, n.b5, n.b6
	for i := range out {
		w := n.rng.Float()
		b0 = 0.99886*b0 + w*0.0555179
		b1 = 0.99332*b1 + w*0.0750759
		b2 = 0.96900*b2 + w*0.1538520
		b3 = 0.86650*b3 + w*0.3104856
		b4 = 0.55000*b4 + w*0.5329522
		b5 = -0.7616*b5 - w*0.0168980
		pink := b0 + b1 + b2 + b3 + b4 + b5 + b6 + w*0.5362
		b6 = w * 0.115926
		out[i] = pink * (1 / 10.2)
	}
	n.b0, n.b1, n.b2, n.b3, n.b4, n.b5, n.b6 = b0, b1, b2, b3, b4, b5, b6
}
