package ggm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
)

func TestRenderCues(t *testing.T) {
	s := newSynth(t, WithBlockSize(64))
	pcm := Render(s, testRate,
		Cue{Frame: testRate / 4, Msg: midi.NoteOff(4, 60)},
		Cue{Frame: 0, Msg: midi.NoteOn(4, 60, 100)},
	)
	require.Len(t, pcm, 2*testRate)
	assert.Zero(t, peak(pcm[:2*64*2]), "initial buffer contents are silent")
	assert.Greater(t, peak(pcm), 1000)
	assert.Zero(t, s.Voices().Active(), "note released and faded")
	assert.Zero(t, s.Stats().Snapshot().Underruns)
}

func TestRenderCueBurst(t *testing.T) {
	s := newSynth(t, WithQueueSize(4))
	var cues []Cue
	for n := uint8(60); n < 68; n++ {
		cues = append(cues, Cue{0, midi.NoteOn(1, n, 100)}, Cue{16000, midi.NoteOff(1, n)})
	}
	for n := uint8(70); n < 79; n++ {
		cues = append(cues, Cue{16000, midi.NoteOn(1, n, 100)})
	}
	Render(s, 20000, cues...)

	for n := uint8(70); n < 79; n++ {
		assert.NotNil(t, s.Voices().Lookup(1, n), "note %d", n)
	}
	snap := s.Stats().Snapshot()
	assert.EqualValues(t, 20000/s.BlockSize(), snap.Blocks, "every drained half rendered")
	assert.Zero(t, snap.Underruns)
}

func TestRenderIsDeterministic(t *testing.T) {
	cues := []Cue{{0, midi.NoteOn(2, 60, 100)}, {3000, midi.NoteOn(5, 61, 100)}}
	a := Render(newSynth(t), 8000, cues...)
	b := Render(newSynth(t), 8000, cues...)
	assert.Equal(t, a, b)
}

func TestWriteWAV(t *testing.T) {
	s := newSynth(t)
	pcm := Render(s, 4000, Cue{0, midi.NoteOn(3, 57, 120)})

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteWAV(f, pcm, testRate))
	require.NoError(t, f.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	defer in.Close()
	dec := wav.NewDecoder(in)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, testRate, buf.Format.SampleRate)
	assert.Equal(t, 2, buf.Format.NumChannels)
	assert.EqualValues(t, 16, dec.BitDepth)
	require.Len(t, buf.Data, len(pcm))
	for i := range pcm {
		if int(pcm[i]) != buf.Data[i] {
			t.Fatalf("sample %d: wrote %d, read %d", i, pcm[i], buf.Data[i])
		}
	}
}
