package dsp

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/dsp/fourier"
)

// bandRatio returns the mean power in a low band divided by the mean power in
// a band four times higher, averaged over several frames.
func bandRatio(kind NoiseKind) float64 {
	const n = 4096
	var ns Noise
	ns.Init(7)
	fft := fourier.NewFFT(n)
	buf := make([]float32, n)
	x := make([]float64, n)
	var coeffs []complex128
	var low, high float64
	// settle the filters
	ns.Generate(kind, buf)
	for range 16 {
		ns.Generate(kind, buf)
		for i, v := range buf {
			x[i] = float64(v)
		}
		coeffs = fft.Coefficients(coeffs, x)
		for k := n / 64; k < n/32; k++ {
			low += cmplx.Abs(coeffs[k]) * cmplx.Abs(coeffs[k])
		}
		for k := n / 16; k < n/8; k++ {
			high += cmplx.Abs(coeffs[k]) * cmplx.Abs(coeffs[k])
		}
	}
	// the high band has four times as many bins
	return (low / float64(n/64)) / (high / float64(n/16))
}

func TestNoiseSpectrum(t *testing.T) {
	white := bandRatio(White)
	pink1 := bandRatio(Pink1)
	pink2 := bandRatio(Pink2)
	brown := bandRatio(Brown)

	assert.InDelta(t, 1, white, 0.3, "white")
	assert.InDelta(t, 4, pink1, 1.5, "pink1")
	assert.InDelta(t, 4, pink2, 1.5, "pink2")
	assert.Greater(t, brown, 8.0, "brown")
}

func TestNoiseRange(t *testing.T) {
	for _, kind := range []NoiseKind{White, Pink1, Pink2, Brown} {
		var ns Noise
		ns.Init(1)
		buf := make([]float32, 1<<14)
		ns.Generate(kind, buf)
		var sum float64
		for _, v := range buf {
			assert.LessOrEqual(t, v, float32(1.5), kind.String())
			assert.GreaterOrEqual(t, v, float32(-1.5), kind.String())
			sum += float64(v)
		}
		assert.InDelta(t, 0, sum/float64(len(buf)), 0.2, kind.String())
	}
}

func TestNoiseStatePersists(t *testing.T) {
	var a, b Noise
	a.Init(3)
	b.Init(3)
	whole := make([]float32, 256)
	a.Generate(Pink2, whole)
	part := make([]float32, 128)
	b.Generate(Pink2, part)
	b.Generate(Pink2, part)
	assert.Equal(t, whole[128:], part)
}
