package patch

import (
	"github.com/deadsy/googoomuck-sub000/internal/block"
	"github.com/deadsy/googoomuck-sub000/internal/dsp"
	"github.com/deadsy/googoomuck-sub000/internal/voice"
)

// Noise plays one of the noise colours, chosen by note%4, through an ADSR.
type Noise struct {
	base
	voices voice.States[noiseVoice]
	vol    float32
	pan    float32

	am, out [block.MaxSize]float32
}

type noiseVoice struct {
	src  dsp.Noise
	kind dsp.NoiseKind
	env  dsp.ADSR
	pan  dsp.Pan
}

func (p *Noise) Init(h voice.Host) {
	p.bind(h)
	p.vol = 1
	p.pan = 0.5
}

func (p *Noise) Start(v *voice.Voice) {
	s := p.voices.Reset(v)
	s.src.Init(uint64(v.Index)<<8 | uint64(v.Note))
	s.kind = dsp.NoiseKind(v.Note % 4)
	s.env.Init(0.05, 0.2, 0.5, 0.5, p.fs)
	s.pan.Set(p.vol, p.pan)
}

func (p *Noise) Stop(v *voice.Voice) {}

func (p *Noise) NoteOn(v *voice.Voice, vel uint8) {
	p.voices.Of(v).env.Attack()
}

func (p *Noise) NoteOff(v *voice.Voice, vel uint8) {
	p.voices.Of(v).env.Release()
}

func (p *Noise) Active(v *voice.Voice) bool {
	return p.voices.Of(v).env.Active()
}

func (p *Noise) Generate(v *voice.Voice, outL, outR []float32) {
	s := p.voices.Of(v)
	n := len(outL)
	am, out := p.am[:n], p.out[:n]
	s.env.Generate(am)
	s.src.Generate(s.kind, out)
	block.Mul(out, am)
	s.pan.Generate(outL, outR, out)
}

func (p *Noise) ControlChange(ctrl, val uint8) {
	switch ctrl {
	case ccVolume:
		p.vol = dsp.Map(val, 0, 1.5)
	case ccPan:
		p.pan = dsp.Map(val, 0, 1)
	default:
		return
	}
	for v := range p.host.Voices(p) {
		p.voices.Of(v).pan.Set(p.vol, p.pan)
	}
}

func (p *Noise) PitchWheel(val uint16) {}
