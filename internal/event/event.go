// Package event carries asynchronous stimuli from producers to the synthesis
// main loop.
package event

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Kind identifies the payload of an Event.
type Kind uint8

const (
	None Kind = iota
	KeyDown
	KeyUp
	Midi
	AudioBlockReady
)

func (k Kind) String() string {
	switch k {
	case KeyDown:
		return "key-down"
	case KeyUp:
		return "key-up"
	case Midi:
		return "midi"
	case AudioBlockReady:
		return "audio"
	}
	return "none"
}

// Event is a value copied into and out of the queue. Only the field matching
// Kind is meaningful.
type Event struct {
	Kind Kind
	Key  int     // KeyDown, KeyUp
	Msg  uint32  // Midi: status<<16 | data1<<8 | data2
	Out  []int16 // AudioBlockReady: the half buffer to fill
}

func (e Event) String() string {
	switch e.Kind {
	case KeyDown, KeyUp:
		return fmt.Sprintf("%s %d", e.Kind, e.Key)
	case Midi:
		return fmt.Sprintf("%s %06x", e.Kind, e.Msg)
	case AudioBlockReady:
		return fmt.Sprintf("%s %d", e.Kind, len(e.Out))
	}
	return e.Kind.String()
}

func NewKeyDown(key int) Event { return Event{Kind: KeyDown, Key: key} }

func NewKeyUp(key int) Event { return Event{Kind: KeyUp, Key: key} }

// NewMIDI packs a channel message (at most three bytes) into an event.
func NewMIDI(msg midi.Message) Event {
	return Event{Kind: Midi, Msg: Pack(msg)}
}

// NewAudioBlockReady asks the main loop to render into out.
func NewAudioBlockReady(out []int16) Event {
	return Event{Kind: AudioBlockReady, Out: out}
}

// Pack encodes up to three message bytes as a 24 bit value.
func Pack(msg midi.Message) uint32 {
	var v uint32
	for i := 0; i < 3; i++ {
		v <<= 8
		if i < len(msg) {
			v |= uint32(msg[i])
		}
	}
	return v
}

// Unpack writes the three bytes of a packed message into buf and returns
// them as a message. buf avoids an allocation per event.
func Unpack(v uint32, buf *[3]byte) midi.Message {
	buf[0] = byte(v >> 16)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v)
	return midi.Message(buf[:])
}
