package patch

import (
	"github.com/deadsy/googoomuck-sub000/internal/block"
	"github.com/deadsy/googoomuck-sub000/internal/dsp"
	"github.com/deadsy/googoomuck-sub000/internal/voice"
)

const (
	ccDuty  = 5
	ccSlope = 6
)

// Goom is a goom wave with an ADSR envelope, panned to stereo.
type Goom struct {
	base
	voices voice.States[goomVoice]

	vol   float32
	pan   float32
	bend  float32
	duty  float32
	slope float32

	am, out [block.MaxSize]float32
}

type goomVoice struct {
	osc dsp.GWave
	env dsp.ADSR
	pan dsp.Pan
}

func (p *Goom) Init(h voice.Host) {
	p.bind(h)
	p.vol = 1
	p.pan = 0.5
	p.bend = 0
	p.duty = 0.5
	p.slope = 0.5
}

func (p *Goom) setFrequency(v *voice.Voice) {
	p.voices.Of(v).osc.SetFrequency(dsp.NoteToFrequency(float32(v.Note) + p.bend))
}

func (p *Goom) setShape(v *voice.Voice) {
	p.voices.Of(v).osc.SetShape(p.duty, p.slope)
}

func (p *Goom) setPan(v *voice.Voice) {
	p.voices.Of(v).pan.Set(p.vol, p.pan)
}

func (p *Goom) Start(v *voice.Voice) {
	s := p.voices.Reset(v)
	s.env.Init(0.05, 0.2, 0.5, 0.5, p.fs)
	s.osc.Init(0, p.fs)
	p.setFrequency(v)
	p.setShape(v)
	p.setPan(v)
}

func (p *Goom) Stop(v *voice.Voice) {}

func (p *Goom) NoteOn(v *voice.Voice, vel uint8) {
	p.voices.Of(v).env.Attack()
}

func (p *Goom) NoteOff(v *voice.Voice, vel uint8) {
	p.voices.Of(v).env.Release()
}

func (p *Goom) Active(v *voice.Voice) bool {
	return p.voices.Of(v).env.Active()
}

func (p *Goom) Generate(v *voice.Voice, outL, outR []float32) {
	s := p.voices.Of(v)
	n := len(outL)
	am, out := p.am[:n], p.out[:n]
	s.env.Generate(am)
	s.osc.Generate(out, nil)
	block.Mul(out, am)
	s.pan.Generate(outL, outR, out)
}

func (p *Goom) ControlChange(ctrl, val uint8) {
	var update func(*voice.Voice)
	switch ctrl {
	case ccVolume:
		p.vol = dsp.Map(val, 0, 1.5)
		update = p.setPan
	case ccPan:
		p.pan = dsp.Map(val, 0, 1)
		update = p.setPan
	case ccDuty:
		p.duty = dsp.Map(val, 0, 1)
		update = p.setShape
	case ccSlope:
		p.slope = dsp.Map(val, 0, 1)
		update = p.setShape
	default:
		return
	}
	for v := range p.host.Voices(p) {
		update(v)
	}
}

func (p *Goom) PitchWheel(val uint16) {
	p.bend = dsp.PitchBend(val)
	for v := range p.host.Voices(p) {
		p.setFrequency(v)
	}
}
