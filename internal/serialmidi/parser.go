// Package serialmidi turns a raw MIDI byte stream, typically a 31250 baud
// serial port, into MIDI events for the synth.
package serialmidi

import "gitlab.com/gomidi/midi/v2"

// Parser assembles channel messages from a byte stream. It supports running
// status, skips system exclusive data and lets realtime bytes through without
// disturbing a message in progress.
type Parser struct {
	status byte
	data   [2]byte
	n      int
	sysex  bool
}

// dataLen returns the number of data bytes for a channel status byte.
func dataLen(status byte) int {
	switch status & 0xf0 {
	case 0xc0, 0xd0:
		return 1
	}
	return 2
}

// Feed consumes one byte and returns a message when one is complete.
func (p *Parser) Feed(b byte) (midi.Message, bool) {
	switch {
	case b >= 0xf8:
		// realtime: clock, start, stop, active sensing...
		return nil, false
	case b == 0xf0:
		p.sysex = true
		p.status = 0
		return nil, false
	case b >= 0xf0:
		// system common and end of exclusive cancel running status
		p.sysex = false
		p.status = 0
		return nil, false
	case b >= 0x80:
		p.sysex = false
		p.status = b
		p.n = 0
		return nil, false
	}
	if p.sysex || p.status == 0 {
		return nil, false
	}
	p.data[p.n] = b
	p.n++
	if p.n < dataLen(p.status) {
		return nil, false
	}
	p.n = 0
	if dataLen(p.status) == 1 {
		return midi.Message{p.status, p.data[0]}, true
	}
	return midi.Message{p.status, p.data[0], p.data[1]}, true
}

// Reset drops any partial message and the running status.
func (p *Parser) Reset() {
	*p = Parser{}
}
