package patch

import (
	"github.com/deadsy/googoomuck-sub000/internal/block"
	"github.com/deadsy/googoomuck-sub000/internal/dsp"
	"github.com/deadsy/googoomuck-sub000/internal/voice"
)

const (
	ccFMTune  = 5
	ccFMLevel = 6
)

// FM is a two operator FM voice: a sine modulator drives a sine carrier whose
// enveloped output passes through a lowpass filter that tracks the note.
type FM struct {
	base
	voices voice.States[fmVoice]

	vol, pan  float32
	bend      float32
	fixedNote int // 0 tracks the played note
	tune      float32
	level     float32
	cutoff    float32 // multiples of the carrier frequency
	resonance float32

	mod, env [block.MaxSize]float32
	mono     [block.MaxSize]float32
}

type fmVoice struct {
	carrier   dsp.Sin
	modulator dsp.Sin
	level     float32 // peak deviation in Hz
	env       dsp.ADSR
	lpf       dsp.SVF
	pan       dsp.Pan
}

func (p *FM) Init(h voice.Host) {
	p.bind(h)
	p.vol = 1
	p.pan = 0.5
	p.bend = 0
	p.fixedNote = noteHi
	p.tune = 1
	p.level = 0.1
	p.cutoff = 5
	p.resonance = 0.5
}

func (p *FM) carrierNote(v *voice.Voice) float32 {
	return float32(v.Note) + p.bend
}

func (p *FM) setFrequency(v *voice.Voice) {
	s := p.voices.Of(v)
	note := p.carrierNote(v)
	s.carrier.SetFrequency(dsp.NoteToFrequency(note))
	modNote := note
	if p.fixedNote != 0 {
		modNote = float32(p.fixedNote)
	}
	modFreq := dsp.NoteToFrequency(modNote * p.tune)
	s.modulator.SetFrequency(modFreq)
	s.level = modFreq * p.level
}

func (p *FM) setFilter(v *voice.Voice) {
	s := p.voices.Of(v)
	s.lpf.SetCutoff(p.cutoff * s.carrier.Frequency())
	s.lpf.SetResonance(p.resonance)
}

func (p *FM) Start(v *voice.Voice) {
	s := p.voices.Reset(v)
	s.carrier.Init(0, p.fs)
	s.modulator.Init(0, p.fs)
	s.env.Init(0.05, 0.2, 0.5, 0.5, p.fs)
	s.lpf.Init(0, p.resonance, p.fs)
	s.pan.Set(p.vol, p.pan)
	p.setFrequency(v)
	p.setFilter(v)
}

func (p *FM) Stop(v *voice.Voice) {}

func (p *FM) NoteOn(v *voice.Voice, vel uint8) {
	p.voices.Of(v).env.Attack()
}

func (p *FM) NoteOff(v *voice.Voice, vel uint8) {
	p.voices.Of(v).env.Release()
}

func (p *FM) Active(v *voice.Voice) bool {
	return p.voices.Of(v).env.Active()
}

func (p *FM) Generate(v *voice.Voice, outL, outR []float32) {
	s := p.voices.Of(v)
	n := len(outL)
	mod, env, mono := p.mod[:n], p.env[:n], p.mono[:n]
	s.modulator.Generate(mod, nil)
	block.MulK(mod, s.level)
	s.carrier.Generate(mono, mod)
	s.env.Generate(env)
	block.Mul(mono, env)
	s.lpf.Generate(mono, mono)
	s.pan.Generate(outL, outR, mono)
}

func (p *FM) ControlChange(ctrl, val uint8) {
	var update func(*voice.Voice)
	switch ctrl {
	case ccVolume:
		p.vol = dsp.Map(val, 0, 1.5)
		update = func(v *voice.Voice) { p.voices.Of(v).pan.Set(p.vol, p.pan) }
	case ccPan:
		p.pan = dsp.Map(val, 0, 1)
		update = func(v *voice.Voice) { p.voices.Of(v).pan.Set(p.vol, p.pan) }
	case ccFMTune:
		p.tune = dsp.Map(val, 0.3, 1/0.3)
		update = p.setFrequency
	case ccFMLevel:
		p.level = dsp.Map(val, 0, 5)
		update = p.setFrequency
	case ccCutoff:
		p.cutoff = dsp.Map(val, 0.5, 10)
		update = p.setFilter
	case ccResonance:
		p.resonance = dsp.Map(val, 0, 1)
		update = p.setFilter
	default:
		return
	}
	for v := range p.host.Voices(p) {
		update(v)
	}
}

func (p *FM) PitchWheel(val uint16) {
	p.bend = dsp.PitchBend(val)
	for v := range p.host.Voices(p) {
		p.setFrequency(v)
		p.setFilter(v)
	}
}
