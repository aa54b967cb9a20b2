package ggm

import (
	"fmt"
	"io"
	"slices"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gitlab.com/gomidi/midi/v2"

	intaudio "github.com/deadsy/googoomuck-sub000/internal/audio"
	"github.com/deadsy/googoomuck-sub000/internal/event"
)

// Cue is a MIDI message delivered once playback reaches Frame.
type Cue struct {
	Frame int
	Msg   midi.Message
}

// Render runs s faster than real time, standing in for the audio device, and
// returns frames frames of interleaved stereo output. The first two blocks
// are the initial contents of the output buffer.
func Render(s *Synth, frames int, cues ...Cue) []int16 {
	cues = slices.Clone(cues)
	slices.SortStableFunc(cues, func(a, b Cue) int { return a.Frame - b.Frame })

	out := make([]int16, frames*intaudio.Channels)
	buf := s.Buffer()
	bs := s.BlockSize()
	for done := 0; done < frames; {
		for len(cues) > 0 && cues[0].Frame <= done {
			// handle each cue at once so a burst never fills the queue
			_ = s.Post(event.NewMIDI(cues[0].Msg))
			for s.Step() {
			}
			cues = cues[1:]
		}
		// stop at the next half boundary so queued events are handled in time
		n := min(frames-done, bs-buf.ReadPos()%bs)
		buf.Consume(out[done*intaudio.Channels : (done+n)*intaudio.Channels])
		done += n
		for s.Step() {
		}
	}
	return out
}

// WriteWAV encodes interleaved stereo samples as a 16 bit PCM WAV file.
func WriteWAV(w io.WriteSeeker, samples []int16, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, intaudio.Channels, 1)
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: intaudio.Channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}
