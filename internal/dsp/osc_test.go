package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 48000

func TestCosLookupAccuracy(t *testing.T) {
	for i := 0; i < 4096; i++ {
		x := uint32(uint64(i) << 20)
		want := math.Cos(2 * math.Pi * float64(x) / (1 << 32))
		assert.InDelta(t, want, float64(CosLookup(x)), 5e-4, "x=%08x", x)
	}
}

func TestCosSinEval(t *testing.T) {
	for _, x := range []float32{0, 0.1, 0.5, 1, Pi / 2, Pi, 4, 7.5} {
		assert.InDelta(t, math.Cos(float64(x)), float64(CosEval(x)), 1e-3, "cos(%v)", x)
		assert.InDelta(t, math.Sin(float64(x)), float64(SinEval(x)), 1e-3, "sin(%v)", x)
	}
}

func TestSinPhaseIsBlockSizeIndependent(t *testing.T) {
	const k, n = 8, 64
	var a, b Sin
	a.Init(440, testRate)
	b.Init(440, testRate)

	blk := make([]float32, n)
	for range k {
		a.Generate(blk, nil)
	}
	whole := make([]float32, k*n)
	b.Generate(whole, nil)

	assert.Equal(t, b.Phase(), a.Phase())
	assert.Equal(t, whole[len(whole)-n:], blk)
}

func TestSinFrequency(t *testing.T) {
	var o Sin
	o.Init(1000, testRate)
	out := make([]float32, testRate)
	o.Generate(out, nil)
	// count rising zero crossings over one second
	crossings := 0
	for i := 1; i < len(out); i++ {
		if out[i-1] < 0 && out[i] >= 0 {
			crossings++
		}
	}
	assert.InDelta(t, 1000, crossings, 1)
}

func TestSinFMZeroMatchesStatic(t *testing.T) {
	var a, b Sin
	a.Init(220, testRate)
	b.Init(220, testRate)
	outA := make([]float32, 256)
	outB := make([]float32, 256)
	a.Generate(outA, nil)
	b.Generate(outB, make([]float32, 256))
	assert.Equal(t, outA, outB)
	assert.Equal(t, a.Phase(), b.Phase())
}

func TestDDS(t *testing.T) {
	var o DDS
	o.InitSin(0.5, 100, 0, testRate)
	out := make([]float32, 480)
	o.Generate(out)
	assert.InDelta(t, 0.5, out[0], 1e-6)
	for i, v := range out {
		want := 0.5 * math.Cos(2*math.Pi*100*float64(i)/testRate)
		require.InDelta(t, want, float64(v), 2e-3, "sample %d", i)
	}

	am := make([]float32, 16)
	o.GenerateAM(out[:16], am)
	assert.Equal(t, make([]float32, 16), out[:16])

	assert.ErrorIs(t, o.SetTable(make([]float32, 12)), ErrTableSize)
	require.NoError(t, o.SetTable([]float32{1, -1}))
}

func TestDDSFMAM(t *testing.T) {
	var a, b DDS
	a.InitSin(1, 300, 0, testRate)
	b.InitSin(1, 300, 0, testRate)
	ones := make([]float32, 128)
	for i := range ones {
		ones[i] = 1
	}
	outA := make([]float32, 128)
	outB := make([]float32, 128)
	a.GenerateFMAM(outA, make([]float32, 128), ones)
	b.Generate(outB)
	assert.Equal(t, outB, outA)
}

func TestGWaveSymmetricIsSine(t *testing.T) {
	var o GWave
	o.Init(100, testRate)
	out := make([]float32, 480)
	o.Generate(out, nil)
	for i, v := range out {
		want := math.Cos(2 * math.Pi * 100 * float64(i) / testRate)
		require.InDelta(t, want, float64(v), 5e-3, "sample %d", i)
	}
}

func TestGWaveShapeFlats(t *testing.T) {
	var o GWave
	o.Init(100, testRate)
	o.SetShape(0.5, 0)
	out := make([]float32, 480)
	o.Generate(out, nil)
	low, high := 0, 0
	for _, v := range out {
		require.LessOrEqual(t, v, float32(1.0001))
		require.GreaterOrEqual(t, v, float32(-1.0001))
		if v < -0.999 {
			low++
		}
		if v > 0.999 {
			high++
		}
	}
	// with the steepest slope most of each half is flat
	assert.Greater(t, low, 150)
	assert.Greater(t, high, 150)
}

func TestMidiHelpers(t *testing.T) {
	assert.InDelta(t, 440, NoteToFrequency(69), 1e-3)
	assert.InDelta(t, 261.6256, NoteToFrequency(60), 1e-2)
	assert.InDelta(t, 880, NoteToFrequency(81), 1e-2)
	assert.Equal(t, float32(0), Map(0, 0, 1.5))
	assert.Equal(t, float32(1.5), Map(127, 0, 1.5))
	assert.Equal(t, float32(0), PitchBend(8192))
	assert.InDelta(t, -2, PitchBend(0), 1e-6)
	assert.InDelta(t, 2, PitchBend(16383), 1e-3)
}
