// Package audio models the circular output buffer shared with the audio
// device and keeps real-time statistics about how far ahead of the device
// the renderer is running.
package audio

import (
	"fmt"
	"sync/atomic"
)

// Channels is the number of interleaved output channels.
const Channels = 2

// DoubleBuffer is a circular stereo int16 buffer split into two halves. The
// renderer fills one half while the device reads the other; each time the
// device finishes a half it is handed back through the drained hook.
type DoubleBuffer struct {
	frames    int
	data      []int16
	pos       atomic.Int64 // device read position in frames, [0, 2*frames)
	onDrained func(out []int16)
}

// NewDoubleBuffer allocates a buffer with two halves of frames frames each.
func NewDoubleBuffer(frames int) (*DoubleBuffer, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("audio: invalid half size %d", frames)
	}
	return &DoubleBuffer{
		frames: frames,
		data:   make([]int16, 2*frames*Channels),
	}, nil
}

// Frames returns the number of frames in one half.
func (b *DoubleBuffer) Frames() int { return b.frames }

// Half returns half 0 (lower) or 1 (upper).
func (b *DoubleBuffer) Half(i int) []int16 {
	n := b.frames * Channels
	return b.data[i*n : (i+1)*n : (i+1)*n]
}

// Which reports which half out refers to, or -1 if it is neither.
func (b *DoubleBuffer) Which(out []int16) int {
	if len(out) == 0 {
		return -1
	}
	for i := range 2 {
		if &out[0] == &b.Half(i)[0] {
			return i
		}
	}
	return -1
}

// OnDrained installs the hook called with each half the device has just
// finished reading. It must be set before the device starts.
func (b *DoubleBuffer) OnDrained(fn func(out []int16)) {
	b.onDrained = fn
}

// ReadPos returns the frame the device will read next.
func (b *DoubleBuffer) ReadPos() int { return int(b.pos.Load()) }

// SetReadPos moves the device read position.
func (b *DoubleBuffer) SetReadPos(pos int) {
	n := 2 * b.frames
	b.pos.Store(int64(((pos % n) + n) % n))
}

// Consume copies whole frames into dst starting at the read position and
// advances it, firing the drained hook at every half boundary crossed. It
// returns the number of samples written.
func (b *DoubleBuffer) Consume(dst []int16) int {
	want := len(dst) / Channels
	pos := int(b.pos.Load())
	done := 0
	for done < want {
		end := b.frames
		if pos >= b.frames {
			end = 2 * b.frames
		}
		n := min(want-done, end-pos)
		copy(dst[done*Channels:], b.data[pos*Channels:(pos+n)*Channels])
		done += n
		pos += n
		if pos == end {
			half := b.Half(end/b.frames - 1)
			if end == 2*b.frames {
				pos = 0
			}
			b.pos.Store(int64(pos))
			if b.onDrained != nil {
				b.onDrained(half)
			}
			continue
		}
		b.pos.Store(int64(pos))
	}
	return done * Channels
}
