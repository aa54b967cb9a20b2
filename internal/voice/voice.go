// Package voice binds notes to a fixed pool of voices and drives the patches
// that render them.
package voice

import (
	"fmt"
	"iter"
)

const (
	// NumVoices is the size of the voice pool.
	NumVoices = 16
	// NumChannels is the number of MIDI channels that can hold a patch.
	NumChannels = 16
)

// Voice is one slot of the pool. It sounds at most one note at a time.
type Voice struct {
	Index   int
	Channel uint8
	Note    uint8
	Patch   Patch
	bound   bool
}

// Bound reports whether the voice has ever been allocated to a note.
func (v *Voice) Bound() bool { return v.bound }

func (v *Voice) String() string {
	if !v.bound {
		return fmt.Sprintf("v%d (free)", v.Index)
	}
	return fmt.Sprintf("v%d c%d n%d", v.Index, v.Channel, v.Note)
}

// Host is what a patch sees of the voice manager.
type Host interface {
	// SampleRate returns the output sample rate in Hz.
	SampleRate() int
	// Voices yields every voice currently bound to p.
	Voices(p Patch) iter.Seq[*Voice]
}

// Patch is a timbre: an algorithm plus per-channel controller state. One
// instance is registered per channel and shared by the voices playing on it.
type Patch interface {
	// Init binds the patch to its host and sets default controller values.
	Init(h Host)
	// Start initializes the voice's private state from the channel state.
	Start(v *Voice)
	// Stop is called before the voice is reassigned to another note.
	Stop(v *Voice)
	NoteOn(v *Voice, vel uint8)
	NoteOff(v *Voice, vel uint8)
	// Active reports whether the voice is producing sound.
	Active(v *Voice) bool
	// Generate renders len(outL) samples into outL and outR (overwriting).
	Generate(v *Voice, outL, outR []float32)
	ControlChange(ctrl, val uint8)
	// PitchWheel takes the 14 bit wheel position, centre 8192.
	PitchWheel(val uint16)
}

// States holds one patch's private state for every voice slot. It is a
// fixed array so starting a voice never allocates.
type States[S any] [NumVoices]S

// Of returns the state for v.
func (s *States[S]) Of(v *Voice) *S {
	return &s[v.Index]
}

// Reset zeroes and returns the state for v.
func (s *States[S]) Reset(v *Voice) *S {
	var zero S
	s[v.Index] = zero
	return &s[v.Index]
}
