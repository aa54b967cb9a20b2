package dsp

// SVF is a Chamberlin state variable filter producing lowpass output.
//
//	low  += f * band
//	high  = in - low - q*band
//	band += f * high
//
// f = 2*sin(pi*fc/fs), q is the damping (1/Q). The loop is stable while f
// stays below about 2-q, so the cutoff is limited to fs/6 and the damping is
// kept above qMin.
type SVF struct {
	low, band float32
	f, q      float32
	fmax      float32
	rate      float32
}

const (
	qMin = 0.05
	qMax = 2
)

// Init clears the filter state and sets cutoff (Hz) and resonance (0..1).
func (s *SVF) Init(cutoff, resonance float32, sampleRate int) {
	*s = SVF{rate: float32(sampleRate)}
	s.fmax = s.coeff(s.rate / 6)
	s.SetCutoff(cutoff)
	s.SetResonance(resonance)
}

func (s *SVF) coeff(fc float32) float32 {
	if fc <= 0 {
		return 0
	}
	f := 2 * SinEval(Pi*fc/s.rate)
	if f > s.fmax && s.fmax > 0 {
		return s.fmax
	}
	return f
}

// SetCutoff sets the cutoff frequency in Hz.
func (s *SVF) SetCutoff(fc float32) {
	s.f = s.coeff(fc)
}

// SetResonance maps resonance 0..1 onto damping qMax..qMin.
func (s *SVF) SetResonance(r float32) {
	s.q = clamp(qMax*(1-clamp(r, 0, 1)), qMin, qMax)
}

// Reset clears the integrators.
func (s *SVF) Reset() {
	s.low, s.band = 0, 0
}

func (s *SVF) step(in, f float32) float32 {
	s.low += f * s.band
	high := in - s.low - s.q*s.band
	s.band += f * high
	return s.low
}

// Generate filters in into out (may alias) at the current cutoff.
func (s *SVF) Generate(out, in []float32) {
	for i := range out {
		out[i] = s.step(in[i], s.f)
	}
}

// GenerateMod filters with a per-sample cutoff in Hz.
func (s *SVF) GenerateMod(out, in, cutoff []float32) {
	for i := range out {
		out[i] = s.step(in[i], s.coeff(cutoff[i]))
	}
}
