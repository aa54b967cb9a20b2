package patch

import (
	"github.com/deadsy/googoomuck-sub000/internal/block"
	"github.com/deadsy/googoomuck-sub000/internal/dsp"
	"github.com/deadsy/googoomuck-sub000/internal/lfo"
	"github.com/deadsy/googoomuck-sub000/internal/voice"
)

const (
	ccVibratoDepth = 1
	ccVibratoRate  = 2
	ccLevel        = 7
)

// Sine is a sine wave with an ADSR envelope and optional vibrato.
type Sine struct {
	base
	voices voice.States[sineVoice]

	vol      float32
	bend     float32
	vibDepth float32 // Hz
	vibRate  float32 // Hz

	am, fm [block.MaxSize]float32
}

type sineVoice struct {
	osc dsp.DDS
	env dsp.ADSR
	vib lfo.LFO
}

func (p *Sine) Init(h voice.Host) {
	p.bind(h)
	p.vol = 1
	p.bend = 0
	p.vibDepth = 0
	p.vibRate = 5
}

func (p *Sine) frequency(v *voice.Voice) float32 {
	return dsp.NoteToFrequency(float32(v.Note) + p.bend)
}

func (p *Sine) Start(v *voice.Voice) {
	s := p.voices.Reset(v)
	s.osc.InitSin(1, p.frequency(v), 0, p.fs)
	s.env.Init(0.05, 0.2, 0.5, 0.5, p.fs)
	s.vib.Set(p.vibDepth, p.vibRate, lfo.WaveSine)
}

func (p *Sine) Stop(v *voice.Voice) {}

func (p *Sine) NoteOn(v *voice.Voice, vel uint8) {
	s := p.voices.Of(v)
	s.vib.Reset()
	s.env.Attack()
}

func (p *Sine) NoteOff(v *voice.Voice, vel uint8) {
	p.voices.Of(v).env.Release()
}

func (p *Sine) Active(v *voice.Voice) bool {
	return p.voices.Of(v).env.Active()
}

func (p *Sine) Generate(v *voice.Voice, outL, outR []float32) {
	s := p.voices.Of(v)
	n := len(outL)
	am := p.am[:n]
	s.env.Generate(am)
	block.MulK(am, p.vol)
	if s.vib.Active() {
		fm := p.fm[:n]
		s.vib.Generate(fm, p.fs)
		s.osc.GenerateFMAM(outL, fm, am)
	} else {
		s.osc.GenerateAM(outL, am)
	}
	block.Copy(outR[:n], outL)
}

func (p *Sine) ControlChange(ctrl, val uint8) {
	switch ctrl {
	case ccLevel:
		p.vol = dsp.Map(val, 0, 1)
		return
	case ccVibratoDepth:
		p.vibDepth = dsp.Map(val, 0, 20)
	case ccVibratoRate:
		p.vibRate = dsp.Map(val, 0.5, 10)
	default:
		return
	}
	for v := range p.host.Voices(p) {
		p.voices.Of(v).vib.Set(p.vibDepth, p.vibRate, lfo.WaveSine)
	}
}

func (p *Sine) PitchWheel(val uint16) {
	p.bend = dsp.PitchBend(val)
	for v := range p.host.Voices(p) {
		p.voices.Of(v).osc.SetFrequency(p.frequency(v))
	}
}
