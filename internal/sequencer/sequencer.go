// Package sequencer plays byte code note programs in time with the audio
// block clock.
//
// The clock is the rate at which blocks are rendered. It is divided down to
// the tempo: each beat (a quarter note) is TicksPerBeat ticks, and each tick
// executes one step of the program.
package sequencer

import (
	"fmt"
	"log/slog"
)

const (
	TicksPerBeat = 16
	DefaultBPM   = 120
)

// NoteSink receives the notes a program plays.
type NoteSink interface {
	NoteOn(ch, note, vel uint8)
	NoteOff(ch, note, vel uint8)
}

type Option func(*Sequencer)

func WithLogger(l *slog.Logger) Option {
	return func(s *Sequencer) { s.log = l }
}

// WithProgram sets the program to play. Invalid programs are rejected by New.
func WithProgram(prog []byte) Option {
	return func(s *Sequencer) { s.pending = prog }
}

func WithBPM(bpm float64) Option {
	return func(s *Sequencer) { s.bpm = bpm }
}

// WithLoopHook installs a callback run each time the program loops.
func WithLoopHook(fn func()) Option {
	return func(s *Sequencer) { s.onLoop = fn }
}

// Sequencer steps a program one tick at a time.
type Sequencer struct {
	sink         NoteSink
	log          *slog.Logger
	onLoop       func()
	secsPerBlock float64
	secsPerTick  float64
	tickError    float64
	bpm          float64
	ticks        uint64
	pending      []byte

	prog     []byte
	running  bool
	pc       int
	waiting  bool // the op at pc has started and is counting down
	duration int
	sounding bool // a note op has sent note on and not yet note off
}

// New returns a stopped sequencer clocked by blocks of blockSize frames at
// sampleRate. It plays the metronome on channel 1 unless another program is
// given.
func New(sink NoteSink, sampleRate, blockSize int, opts ...Option) (*Sequencer, error) {
	if sampleRate <= 0 || blockSize <= 0 {
		return nil, fmt.Errorf("sequencer: invalid clock %d frames at %d Hz", blockSize, sampleRate)
	}
	s := &Sequencer{
		sink:         sink,
		log:          slog.Default(),
		secsPerBlock: float64(blockSize) / float64(sampleRate),
		bpm:          DefaultBPM,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.SetBPM(s.bpm); err != nil {
		return nil, err
	}
	prog := s.pending
	if prog == nil {
		prog = Metronome(1)
	}
	s.pending = nil
	if err := s.Load(prog); err != nil {
		return nil, err
	}
	return s, nil
}

// SetBPM sets the tempo in quarter notes per minute.
func (s *Sequencer) SetBPM(bpm float64) error {
	if !(bpm > 0) {
		return fmt.Errorf("sequencer: invalid tempo %v", bpm)
	}
	s.bpm = bpm
	s.secsPerTick = 60 / (bpm * TicksPerBeat)
	return nil
}

func (s *Sequencer) BPM() float64 { return s.bpm }

// Load validates prog and replaces the current program. The sequencer is
// stopped and rewound.
func (s *Sequencer) Load(prog []byte) error {
	if err := Validate(prog); err != nil {
		return err
	}
	s.Stop()
	s.prog = prog
	s.pc = 0
	s.waiting = false
	return nil
}

// Program returns the loaded program.
func (s *Sequencer) Program() []byte { return s.prog }

// Start runs the program from its current position.
func (s *Sequencer) Start() {
	if !s.running {
		s.log.Debug("sequencer start", "pc", s.pc)
	}
	s.running = true
}

// Stop halts the program, releasing any note it is holding, and rewinds it.
func (s *Sequencer) Stop() {
	if s.sounding {
		ch, note, _, _ := noteArgs(s.prog[s.pc:])
		s.sink.NoteOff(ch, note, 0)
		s.sounding = false
	}
	if s.running {
		s.log.Debug("sequencer stop", "pc", s.pc, "ticks", s.ticks)
	}
	s.running = false
	s.pc = 0
	s.waiting = false
}

// Toggle starts a stopped sequencer and stops a running one.
func (s *Sequencer) Toggle() {
	if s.running {
		s.Stop()
	} else {
		s.Start()
	}
}

func (s *Sequencer) Running() bool { return s.running }

// Ticks returns the number of ticks elapsed since creation. Ticks advance
// whether or not a program is running.
func (s *Sequencer) Ticks() uint64 { return s.ticks }

// Exec advances the clock by one block, running a program step for every
// tick that has become due.
func (s *Sequencer) Exec() {
	// The tempo is rarely a whole number of blocks, so carry the error.
	s.tickError += s.secsPerBlock
	for s.tickError > s.secsPerTick {
		s.tickError -= s.secsPerTick
		s.ticks++
		if s.running {
			s.step()
		}
	}
}

func (s *Sequencer) step() {
	op := Opcode(s.prog[s.pc])
	switch op {
	case OpNop:
		s.pc += op.Size()
	case OpLoop:
		s.pc = 0
		if s.onLoop != nil {
			s.onLoop()
		}
	case OpNote:
		ch, note, vel, dur := noteArgs(s.prog[s.pc:])
		if !s.waiting {
			s.waiting = true
			s.duration = max(int(dur), 1)
			s.log.Debug("sequencer note on", "channel", ch, "note", note, "tick", s.ticks)
			s.sink.NoteOn(ch, note, vel)
			s.sounding = true
		}
		if s.countdown() {
			s.log.Debug("sequencer note off", "channel", ch, "note", note, "tick", s.ticks)
			s.sink.NoteOff(ch, note, 0)
			s.sounding = false
			s.pc += op.Size()
		}
	case OpRest:
		if !s.waiting {
			s.waiting = true
			s.duration = max(int(s.prog[s.pc+1]), 1)
		}
		if s.countdown() {
			s.pc += op.Size()
		}
	}
	if s.pc >= len(s.prog) {
		s.pc = 0
	}
}

// countdown consumes one tick of the current op's duration and reports
// whether the op has finished.
func (s *Sequencer) countdown() bool {
	s.duration--
	if s.duration == 0 {
		s.waiting = false
		return true
	}
	return false
}

func noteArgs(b []byte) (ch, note, vel, dur uint8) {
	return b[1], b[2], b[3], b[4]
}
