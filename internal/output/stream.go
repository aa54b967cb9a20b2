// Package output plays a DoubleBuffer through the system audio device.
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/deadsy/googoomuck-sub000/internal/audio"
)

// StreamReader exposes a DoubleBuffer as 16 bit little endian stereo PCM.
// Each Read advances the buffer's read position like a DMA transfer would.
type StreamReader struct {
	mu  sync.Mutex
	buf *audio.DoubleBuffer
	pcm []int16
}

func NewStreamReader(buf *audio.DoubleBuffer) *StreamReader {
	return &StreamReader{buf: buf}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / (2 * audio.Channels)
	if frames == 0 {
		return 0, nil
	}
	need := frames * audio.Channels
	if cap(r.pcm) < need {
		r.pcm = make([]int16, need)
	}
	r.pcm = r.pcm[:need]
	n := r.buf.Consume(r.pcm)
	for i, v := range r.pcm[:n] {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(v))
	}
	return n * 2, nil
}

func (r *StreamReader) Close() error { return nil }

type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("output: audio context already running at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer opens the audio device at sampleRate and streams buf to it.
// The device buffer is sized to one half of buf so the read position seen
// by the renderer stays close to what is actually playing.
func NewPlayer(sampleRate int, buf *audio.DoubleBuffer) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(buf)
	pl, err := ctx.NewPlayer(reader)
	if err != nil {
		return nil, err
	}
	pl.SetBufferSize(time.Duration(buf.Frames()) * time.Second / time.Duration(sampleRate))
	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns how long the device has been playing.
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

func (p *Player) Close() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
