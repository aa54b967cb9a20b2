// Package ggm is a polyphonic synthesizer driven by a double buffered audio
// output.
//
// Producers (the audio device, MIDI input, the keyboard) Post events. A
// single goroutine runs the Synth, taking events off the queue one at a time:
// each AudioBlockReady renders the next block into the half of the output
// buffer the device has just finished with.
package ggm

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/deadsy/googoomuck-sub000/internal/audio"
	"github.com/deadsy/googoomuck-sub000/internal/block"
	"github.com/deadsy/googoomuck-sub000/internal/config"
	"github.com/deadsy/googoomuck-sub000/internal/effects"
	"github.com/deadsy/googoomuck-sub000/internal/event"
	"github.com/deadsy/googoomuck-sub000/internal/keys"
	"github.com/deadsy/googoomuck-sub000/internal/patch"
	"github.com/deadsy/googoomuck-sub000/internal/sequencer"
	"github.com/deadsy/googoomuck-sub000/internal/voice"
)

type Option func(*settings)

type settings struct {
	blockSize    int
	queueSize    int
	patches      map[uint8]string
	program      []byte
	programText  string
	seqChannel   uint8
	bpm          float64
	autostart    bool
	masterVolume float32
	layout       *keys.Layout
	keyMap       map[string]config.Key
	fxConfig     config.Effects
	fx           []effects.Effect
	locker       sync.Locker
	log          *slog.Logger
}

func defaultSettings() settings {
	return fromConfig(config.Default())
}

func fromConfig(cfg config.Config) settings {
	s := settings{
		blockSize:    cfg.BlockSize,
		queueSize:    cfg.QueueSize,
		patches:      make(map[uint8]string, len(cfg.Patches)),
		programText:  cfg.Sequencer.Program,
		seqChannel:   uint8(cfg.Sequencer.Channel),
		bpm:          cfg.Sequencer.BPM,
		autostart:    cfg.Sequencer.Autostart,
		masterVolume: cfg.MasterVolume,
		keyMap:       cfg.Keys,
		fxConfig:     cfg.Effects,
		log:          slog.Default(),
	}
	for ch, name := range cfg.Patches {
		s.patches[uint8(ch)] = name
	}
	return s
}

// WithConfig replaces every setting with those of cfg. Options after it
// still apply.
func WithConfig(cfg config.Config) Option {
	return func(s *settings) {
		log := s.log
		*s = fromConfig(cfg)
		s.log = log
	}
}

// WithBlockSize sets the number of frames rendered per block, which is also
// the size of each half of the output buffer.
func WithBlockSize(frames int) Option {
	return func(s *settings) { s.blockSize = frames }
}

func WithQueueSize(n int) Option {
	return func(s *settings) { s.queueSize = n }
}

// WithPatch assigns a patch by name to a channel.
func WithPatch(ch uint8, name string) Option {
	return func(s *settings) { s.patches[ch] = name }
}

// WithPatches replaces the whole channel to patch table.
func WithPatches(patches map[uint8]string) Option {
	return func(s *settings) { s.patches = maps.Clone(patches) }
}

// WithSequencer sets the sequencer program, in byte code.
func WithSequencer(prog []byte, autostart bool) Option {
	return func(s *settings) {
		s.program = prog
		s.programText = ""
		s.autostart = autostart
	}
}

func WithBPM(bpm float64) Option {
	return func(s *settings) { s.bpm = bpm }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithKeyMap sets the keyboard layout used to interpret key events.
func WithKeyMap(l *keys.Layout) Option {
	return func(s *settings) { s.layout = l }
}

// WithEffects appends effects to the master bus after any configured ones.
func WithEffects(fx ...effects.Effect) Option {
	return func(s *settings) { s.fx = append(s.fx, fx...) }
}

func WithMasterVolume(v float32) Option {
	return func(s *settings) { s.masterVolume = v }
}

// WithLocker sets the lock guarding the event queue indices.
func WithLocker(l sync.Locker) Option {
	return func(s *settings) { s.locker = l }
}

// Synth owns the voices, patches, sequencer and output buffer. Only Post,
// Notify, the master volume and Stats().Snapshot may be used from other
// goroutines.
type Synth struct {
	sampleRate int
	blockSize  int
	queue      *event.Queue
	notify     chan struct{}
	voices     *voice.Manager
	buf        *audio.DoubleBuffer
	stats      *audio.Stats
	seq        *sequencer.Sequencer
	layout     *keys.Layout
	gain       atomic.Uint32
	fx         *effects.Chain
	log        *slog.Logger

	outL, outR [block.MaxSize]float32
	msg        [3]byte
}

// New builds a synth running at sampleRate.
func New(sampleRate int, opts ...Option) (*Synth, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("ggm: invalid sample rate %d", sampleRate)
	}
	if cfg.blockSize <= 0 || cfg.blockSize > block.MaxSize {
		return nil, fmt.Errorf("ggm: block size %d outside 1..%d", cfg.blockSize, block.MaxSize)
	}

	s := &Synth{
		sampleRate: sampleRate,
		blockSize:  cfg.blockSize,
		notify:     make(chan struct{}, 1),
		log:        cfg.log,
	}
	s.SetMasterVolume(cfg.masterVolume)

	var qopts []event.QueueOption
	if cfg.locker != nil {
		qopts = append(qopts, event.WithLocker(cfg.locker))
	}
	var err error
	if s.queue, err = event.NewQueue(cfg.queueSize, qopts...); err != nil {
		return nil, err
	}

	s.voices = voice.NewManager(sampleRate, voice.WithLogger(cfg.log))
	for _, ch := range slices.Sorted(maps.Keys(cfg.patches)) {
		p, err := patch.New(cfg.patches[ch])
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		if err := s.voices.SetPatch(ch, p); err != nil {
			return nil, err
		}
	}

	if s.buf, err = audio.NewDoubleBuffer(cfg.blockSize); err != nil {
		return nil, err
	}
	s.buf.OnDrained(func(out []int16) {
		_ = s.Post(event.NewAudioBlockReady(out))
	})
	s.stats = audio.NewStats(cfg.blockSize, audio.WithStatsLogger(cfg.log))

	prog := cfg.program
	if cfg.programText != "" {
		if prog, err = sequencer.Assemble(cfg.programText); err != nil {
			return nil, err
		}
	}
	if prog == nil {
		prog = sequencer.Metronome(cfg.seqChannel)
	}
	s.seq, err = sequencer.New(s.voices, sampleRate, cfg.blockSize,
		sequencer.WithProgram(prog),
		sequencer.WithBPM(cfg.bpm),
		sequencer.WithLogger(cfg.log),
		sequencer.WithLoopHook(func() {
			s.log.Debug("sequencer loop", "ticks", s.seq.Ticks())
		}),
	)
	if err != nil {
		return nil, err
	}
	if cfg.autostart {
		s.seq.Start()
	}

	s.fx = newEffects(sampleRate, cfg.fxConfig)
	for _, e := range cfg.fx {
		s.fx.Add(e)
	}

	s.layout = cfg.layout
	if s.layout == nil {
		if s.layout, err = keys.LayoutFromConfig(cfg.keyMap); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Post queues an event for the main loop. It never blocks; when the queue is
// full the event is dropped and event.ErrQueueFull returned.
func (s *Synth) Post(e event.Event) error {
	if err := s.queue.Put(e); err != nil {
		s.log.Error("event dropped", "event", e.String(), "err", err)
		return err
	}
	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// Notify returns a channel that receives a value after events are posted.
func (s *Synth) Notify() <-chan struct{} { return s.notify }

// Step handles one queued event and reports whether there was one.
func (s *Synth) Step() bool {
	e, ok := s.queue.Get()
	if !ok {
		return false
	}
	switch e.Kind {
	case event.AudioBlockReady:
		s.render(e.Out)
	case event.Midi:
		s.voices.HandleMessage(event.Unpack(e.Msg, &s.msg))
	case event.KeyDown:
		s.keyDown(e.Key)
	case event.KeyUp:
		s.keyUp(e.Key)
	default:
		s.log.Warn("unknown event", "event", e.String())
	}
	return true
}

// Run handles events until ctx is done.
func (s *Synth) Run(ctx context.Context) error {
	for {
		for s.Step() {
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.notify:
		}
	}
}

func (s *Synth) render(out []int16) {
	half := s.buf.Which(out)
	if half < 0 {
		s.log.Error("render target is not an output half", "len", len(out))
		return
	}
	n := len(out) / audio.Channels
	l, r := s.outL[:n], s.outR[:n]
	s.voices.Render(l, r)
	if g := s.MasterVolume(); g != 1 {
		block.MulK(l, g)
		block.MulK(r, g)
	}
	s.fx.Process(l, r)
	audio.ClipConvert(out, l, r)
	s.stats.Record(half, s.buf.ReadPos())
	s.seq.Exec()
}

func newEffects(sampleRate int, c config.Effects) *effects.Chain {
	chain := effects.NewChain()
	if d := c.Drive; d != nil {
		chain.Add(effects.NewDrive(sampleRate, d.Pre, d.Post, d.Cutoff))
	}
	if d := c.Delay; d != nil {
		chain.Add(effects.NewDelay(sampleRate, d.Time, d.Feedback, d.Cross, d.Wet))
	}
	if cp := c.Compressor; cp != nil {
		chain.Add(effects.NewCompressor(sampleRate, cp.Threshold, cp.Ratio, cp.Attack, cp.Release, cp.Makeup))
	}
	return chain
}

func (s *Synth) keyDown(key int) {
	switch key {
	case keys.KeySequencer:
		s.seq.Toggle()
		s.log.Info("sequencer", "running", s.seq.Running())
	case keys.KeyAllOff:
		s.voices.AllNotesOff()
	default:
		if n, ok := s.layout.Note(key); ok {
			s.voices.NoteOn(n.Channel, n.Note, n.Velocity)
		}
	}
}

func (s *Synth) keyUp(key int) {
	if n, ok := s.layout.Note(key); ok {
		s.voices.NoteOff(n.Channel, n.Note, 0)
	}
}

// SetMasterVolume sets the gain applied to the mix. Negative values are
// treated as 0.
func (s *Synth) SetMasterVolume(v float32) {
	if v < 0 || math.IsNaN(float64(v)) {
		v = 0
	}
	s.gain.Store(math.Float32bits(v))
}

func (s *Synth) MasterVolume() float32 {
	return math.Float32frombits(s.gain.Load())
}

func (s *Synth) SampleRate() int { return s.sampleRate }

// BlockSize returns the number of frames per rendered block.
func (s *Synth) BlockSize() int { return s.blockSize }

// Buffer returns the output buffer the audio device reads.
func (s *Synth) Buffer() *audio.DoubleBuffer { return s.buf }

func (s *Synth) Stats() *audio.Stats { return s.stats }

func (s *Synth) Voices() *voice.Manager { return s.voices }

func (s *Synth) Sequencer() *sequencer.Sequencer { return s.seq }

// ErrQueueFull is returned by Post when an event had to be dropped.
var ErrQueueFull = event.ErrQueueFull
