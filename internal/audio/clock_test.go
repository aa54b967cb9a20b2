package audio

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockAdvance(t *testing.T) {
	b, _ := NewDoubleBuffer(64)
	n := 0
	b.OnDrained(func([]int16) { n++ })
	c := NewClock(b)
	c.Advance(63)
	assert.Zero(t, n)
	c.Advance(1)
	assert.Equal(t, 1, n)
	c.Advance(64 * 5)
	assert.Equal(t, 6, n)
	assert.EqualValues(t, 64*6, c.Played())
	assert.Equal(t, 0, b.ReadPos())
}

func TestClockRun(t *testing.T) {
	b, _ := NewDoubleBuffer(100)
	var n atomic.Int32
	b.OnDrained(func([]int16) { n.Add(1) })
	c := NewClock(b)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := c.Run(ctx, 10000, 5*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// 10000 frames/s for ~0.2 s is ~20 halves of 100 frames
	assert.Greater(t, n.Load(), int32(5))
	assert.Less(t, n.Load(), int32(40))
}
