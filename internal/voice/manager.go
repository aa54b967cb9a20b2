package voice

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"

	"github.com/deadsy/googoomuck-sub000/internal/block"
)

var ErrChannel = errors.New("voice: channel out of range")

// Manager owns the voice pool and the channel to patch table. All methods
// must be called from the main loop.
type Manager struct {
	sampleRate int
	voices     [NumVoices]Voice
	patches    [NumChannels]Patch
	next       int
	log        *slog.Logger

	scratchL [block.MaxSize]float32
	scratchR [block.MaxSize]float32
}

type ManagerOption func(*Manager)

func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

func NewManager(sampleRate int, opts ...ManagerOption) *Manager {
	m := &Manager{
		sampleRate: sampleRate,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	for i := range m.voices {
		m.voices[i].Index = i
	}
	return m
}

func (m *Manager) SampleRate() int { return m.sampleRate }

// SetPatch binds p to a channel and initializes it. A nil patch clears the
// channel; voices already playing on it keep their old patch until stolen.
func (m *Manager) SetPatch(ch uint8, p Patch) error {
	if int(ch) >= NumChannels {
		return fmt.Errorf("%w: %d", ErrChannel, ch)
	}
	m.patches[ch] = p
	if p != nil {
		p.Init(m)
	}
	return nil
}

// Patch returns the patch on a channel, or nil.
func (m *Manager) Patch(ch uint8) Patch {
	if int(ch) >= NumChannels {
		return nil
	}
	return m.patches[ch]
}

// Voice returns pool slot i.
func (m *Manager) Voice(i int) *Voice { return &m.voices[i] }

// Voices yields the voices currently bound to p.
func (m *Manager) Voices(p Patch) iter.Seq[*Voice] {
	return func(yield func(*Voice) bool) {
		for i := range m.voices {
			v := &m.voices[i]
			if v.bound && v.Patch == p {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Lookup finds the voice playing note on channel.
func (m *Manager) Lookup(ch, note uint8) *Voice {
	for i := range m.voices {
		v := &m.voices[i]
		if v.bound && v.Channel == ch && v.Note == note {
			return v
		}
	}
	return nil
}

// Alloc takes the next voice in round-robin order and binds it to the note,
// stopping whatever it was playing. It returns nil when the channel has no
// patch.
func (m *Manager) Alloc(ch, note uint8) *Voice {
	if int(ch) >= NumChannels || m.patches[ch] == nil {
		m.log.Debug("no patch for channel", "channel", ch)
		return nil
	}
	v := &m.voices[m.next]
	m.next++
	if m.next == NumVoices {
		m.next = 0
	}
	if v.Patch != nil {
		v.Patch.Stop(v)
	}
	v.Channel = ch
	v.Note = note
	v.Patch = m.patches[ch]
	v.bound = true
	v.Patch.Start(v)
	return v
}

// NoteOn retriggers the voice already playing the note, or allocates one.
// A velocity of zero is a note off.
func (m *Manager) NoteOn(ch, note, vel uint8) {
	if vel == 0 {
		m.NoteOff(ch, note, 0)
		return
	}
	v := m.Lookup(ch, note)
	if v == nil {
		v = m.Alloc(ch, note)
	}
	if v != nil {
		v.Patch.NoteOn(v, vel)
	}
}

func (m *Manager) NoteOff(ch, note, vel uint8) {
	if v := m.Lookup(ch, note); v != nil {
		v.Patch.NoteOff(v, vel)
	}
}

// AllNotesOff releases every bound voice.
func (m *Manager) AllNotesOff() {
	for i := range m.voices {
		v := &m.voices[i]
		if v.bound {
			v.Patch.NoteOff(v, 0)
		}
	}
}

func (m *Manager) ControlChange(ch, ctrl, val uint8) {
	if p := m.Patch(ch); p != nil {
		p.ControlChange(ctrl, val)
	}
}

func (m *Manager) PitchWheel(ch uint8, val uint16) {
	if p := m.Patch(ch); p != nil {
		p.PitchWheel(val)
	}
}

// HandleMessage dispatches a decoded channel message.
func (m *Manager) HandleMessage(msg midi.Message) {
	var ch, key, vel, ctrl, val uint8
	var rel int16
	var abs uint16
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		m.NoteOn(ch, key, vel)
	case msg.GetNoteEnd(&ch, &key):
		m.NoteOff(ch, key, 0)
	case msg.GetControlChange(&ch, &ctrl, &val):
		m.ControlChange(ch, ctrl, val)
	case msg.GetPitchBend(&ch, &rel, &abs):
		m.PitchWheel(ch, abs)
	default:
		m.log.Debug("ignored midi message", "msg", msg.String())
	}
}

// Active returns the number of voices producing sound.
func (m *Manager) Active() int {
	n := 0
	for i := range m.voices {
		v := &m.voices[i]
		if v.Patch != nil && v.Patch.Active(v) {
			n++
		}
	}
	return n
}

// Render mixes every active voice into outL and outR, which are overwritten.
// len(outL) must not exceed block.MaxSize.
func (m *Manager) Render(outL, outR []float32) {
	n := len(outL)
	block.Zero(outL)
	block.Zero(outR[:n])
	l := m.scratchL[:n]
	r := m.scratchR[:n]
	for i := range m.voices {
		v := &m.voices[i]
		if v.Patch == nil || !v.Patch.Active(v) {
			continue
		}
		v.Patch.Generate(v, l, r)
		block.Add(outL, l)
		block.Add(outR[:n], r)
	}
}
