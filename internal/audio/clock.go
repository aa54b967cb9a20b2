package audio

import (
	"context"
	"time"
)

// Clock stands in for the audio device, consuming a DoubleBuffer either on
// demand or in real time.
type Clock struct {
	buf     *DoubleBuffer
	scratch []int16
	played  int64
}

func NewClock(buf *DoubleBuffer) *Clock {
	return &Clock{buf: buf, scratch: make([]int16, buf.Frames()*Channels)}
}

// Advance consumes frames frames.
func (c *Clock) Advance(frames int) {
	for frames > 0 {
		n := min(frames, c.buf.Frames())
		c.buf.Consume(c.scratch[:n*Channels])
		frames -= n
		c.played += int64(n)
	}
}

// Played returns the total number of frames consumed.
func (c *Clock) Played() int64 { return c.played }

// Run consumes the buffer at sampleRate frames per second, waking every
// period, until ctx is done.
func (c *Clock) Run(ctx context.Context, sampleRate int, period time.Duration) error {
	t := time.NewTicker(period)
	defer t.Stop()
	start := time.Now()
	base := c.played
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			due := base + int64(now.Sub(start).Seconds()*float64(sampleRate))
			if n := due - c.played; n > 0 {
				c.Advance(int(n))
			}
		}
	}
}
