package dsp

import "github.com/chewxy/math32"

// BendRange is the pitch wheel range in semitones.
const BendRange = 2

// NoteToFrequency returns the frequency in Hz of a (possibly fractional) MIDI
// note number, with A4 (69) at 440 Hz.
func NoteToFrequency(note float32) float32 {
	return 440 * math32.Exp2((note-69)/12)
}

// Map maps a 7 bit controller value onto [a, b].
func Map(val uint8, a, b float32) float32 {
	return a + (b-a)*float32(val&0x7f)/127
}

// PitchBend converts a 14 bit pitch wheel value (centre 8192) to semitones.
func PitchBend(val uint16) float32 {
	return BendRange * (float32(val&0x3fff) - 8192) / 8192
}
