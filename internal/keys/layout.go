// Package keys turns a computer keyboard into a source of key events.
//
// Every key has an integer id. Ids below FirstNoteKey are reserved for
// built-in functions; the rest play notes.
package keys

import (
	"fmt"
	"maps"
	"slices"

	"github.com/deadsy/googoomuck-sub000/internal/config"
)

// Built-in key ids.
const (
	KeySequencer = 1 // start/stop the sequencer
	KeyAllOff    = 2 // release every voice
	FirstNoteKey = 16
)

// Note is what a note key plays.
type Note struct {
	Channel  uint8
	Note     uint8
	Velocity uint8
}

// Layout assigns ids to characters and notes to ids.
type Layout struct {
	ids   map[rune]int
	notes map[int]Note
}

// NewLayout binds '1' and '2' to the built-in keys and gives each note key an
// id in character order.
func NewLayout(notes map[rune]Note) (*Layout, error) {
	l := &Layout{
		ids:   map[rune]int{'1': KeySequencer, '2': KeyAllOff},
		notes: make(map[int]Note, len(notes)),
	}
	id := FirstNoteKey
	for _, r := range slices.Sorted(maps.Keys(notes)) {
		if _, ok := l.ids[r]; ok {
			return nil, fmt.Errorf("keys: %q is reserved", r)
		}
		n := notes[r]
		if n.Channel > 15 || n.Note > 127 || n.Velocity > 127 {
			return nil, fmt.Errorf("keys: %q has an invalid note %+v", r, n)
		}
		l.ids[r] = id
		l.notes[id] = n
		id++
	}
	return l, nil
}

// LayoutFromConfig builds a layout from the keys section of a config file.
func LayoutFromConfig(m map[string]config.Key) (*Layout, error) {
	notes := make(map[rune]Note, len(m))
	for name, k := range m {
		r := []rune(name)
		if len(r) != 1 {
			return nil, fmt.Errorf("keys: %q is not a single character", name)
		}
		if k.Channel < 0 || k.Channel > 15 || k.Note < 0 || k.Note > 127 || k.Velocity < 0 || k.Velocity > 127 {
			return nil, fmt.Errorf("keys: %q has an invalid note %+v", name, k)
		}
		notes[r[0]] = Note{Channel: uint8(k.Channel), Note: uint8(k.Note), Velocity: uint8(k.Velocity)}
	}
	return NewLayout(notes)
}

// ID returns the key id bound to r.
func (l *Layout) ID(r rune) (int, bool) {
	id, ok := l.ids[r]
	return id, ok
}

// Note returns the note played by key id.
func (l *Layout) Note(id int) (Note, bool) {
	n, ok := l.notes[id]
	return n, ok
}

// Len returns the number of bound characters.
func (l *Layout) Len() int { return len(l.ids) }
