package effects

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func impulse(n int) (l, r []float32) {
	l, r = make([]float32, n), make([]float32, n)
	l[0], r[0] = 1, 1
	return l, r
}

func TestDelayEcho(t *testing.T) {
	d := NewDelay(1000, 0.125, 0.5, 0, 0.5)
	l, r := impulse(300)
	d.Process(l, r)

	assert.InDelta(t, 0.5, l[0], 1e-6)
	assert.InDelta(t, 0.5, l[125], 1e-6, "first echo")
	assert.InDelta(t, 0.25, l[250], 1e-6, "second echo")
	assert.Zero(t, l[60])
	assert.Equal(t, l, r)
}

func TestDelayCross(t *testing.T) {
	d := NewDelay(1024, 0.0078125, 0.5, 1, 1)
	l, r := make([]float32, 20), make([]float32, 20)
	l[0] = 1
	d.Process(l, r)

	assert.InDelta(t, 1, l[8], 1e-6)
	assert.Zero(t, r[8])
	// feedback crosses over on every pass
	assert.InDelta(t, 0.5, r[16], 1e-6)
	assert.Zero(t, l[16])
}

func TestDelayLimits(t *testing.T) {
	d := NewDelay(1000, 100, 2, -1, 3)
	assert.Len(t, d.bufL, int(MaxDelay*1000))
	assert.Equal(t, float32(0.95), d.feedback)
	assert.Zero(t, d.cross)
	assert.Equal(t, float32(1), d.wet)

	d = NewDelay(1000, 0, 0, 0, 0)
	assert.Len(t, d.bufL, 1)
}

func TestDelayReset(t *testing.T) {
	d := NewDelay(1000, 0.01, 0.9, 0, 1)
	l, r := impulse(5)
	d.Process(l, r)
	d.Reset()

	l, r = make([]float32, 40), make([]float32, 40)
	d.Process(l, r)
	for i := range l {
		require.Zero(t, l[i])
		require.Zero(t, r[i])
	}
}

func TestDriveBounded(t *testing.T) {
	d := NewDrive(44100, 10, 0.8, 0)
	l := []float32{-4, -0.5, 0, 0.5, 4}
	r := []float32{4, 0.5, 0, -0.5, -4}
	d.Process(l, r)
	for i := range l {
		assert.LessOrEqual(t, math32.Abs(l[i]), float32(0.8))
		assert.Equal(t, -l[i], r[i])
	}
	assert.Zero(t, l[2])
	assert.Greater(t, l[3], float32(0.7))
}

func TestDriveFilter(t *testing.T) {
	d := NewDrive(44100, 1, 1, 1000)
	require.Greater(t, d.alpha, float32(0))
	l, r := make([]float32, 4), make([]float32, 4)
	for i := range l {
		l[i], r[i] = 1, 1
	}
	d.Process(l, r)
	// the low pass approaches tanh(1) from below
	assert.Less(t, l[0], l[3])
	assert.Less(t, l[3], math32.Tanh(1))

	assert.Zero(t, NewDrive(44100, 1, 1, 30000).alpha)
}

func TestCompressorReducesLoud(t *testing.T) {
	c := NewCompressor(44100, -20, 4, 0.001, 0.05, 0)
	var l, r []float32
	for range 20 {
		l, r = make([]float32, 128), make([]float32, 128)
		for i := range l {
			l[i], r[i] = 1, 1
		}
		c.Process(l, r)
	}
	// 20 dB over threshold at 4:1 leaves 5 dB over, so 15 dB of reduction
	assert.InDelta(t, dbToGain(-15), l[127], 0.01)
	assert.Equal(t, l, r)
}

func TestCompressorPassesQuiet(t *testing.T) {
	c := NewCompressor(44100, -6, 8, 0.001, 0.05, 6)
	l := []float32{0.1, -0.1, 0.2}
	r := []float32{0.1, -0.1, 0.2}
	c.Process(l, r)
	g := dbToGain(6)
	assert.InDelta(t, 0.1*g, l[0], 1e-5)
	assert.InDelta(t, 0.2*g, r[2], 1e-5)
	assert.Equal(t, float32(1), c.Gain())
}

func TestChainOrder(t *testing.T) {
	c := NewChain(NewDrive(1000, 1, 2, 0))
	c.Add(NewDelay(1000, 0.001, 0, 0, 1))
	require.Equal(t, 2, c.Len())

	l := []float32{1, 0, 0}
	r := []float32{0, 0, 0}
	c.Process(l, r)
	assert.Zero(t, l[0])
	assert.InDelta(t, 2*math32.Tanh(1), l[1], 1e-6)

	c.Reset()
	l, r = make([]float32, 3), make([]float32, 3)
	c.Process(l, r)
	assert.Zero(t, l[1])
}
