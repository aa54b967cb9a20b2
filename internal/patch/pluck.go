package patch

import (
	"github.com/deadsy/googoomuck-sub000/internal/block"
	"github.com/deadsy/googoomuck-sub000/internal/dsp"
	"github.com/deadsy/googoomuck-sub000/internal/voice"
)

const ccAttenuate = 1

// Pluck is a Karplus-Strong plucked string. The string rings until it decays
// on its own, so its voices are always active.
type Pluck struct {
	base
	voices voice.States[pluckVoice]
	rng    dsp.Rand
	seed   uint64

	attenuate float32
	vol       float32
	pan       float32
	bend      float32

	out [block.MaxSize]float32
}

type pluckVoice struct {
	ks  dsp.KS
	pan dsp.Pan
}

func (p *Pluck) Init(h voice.Host) {
	p.bind(h)
	p.attenuate = 0.99
	p.vol = 1
	p.pan = 0.5
	p.bend = 0
	p.seed++
	p.rng.Seed(p.seed)
}

func (p *Pluck) setFrequency(v *voice.Voice) {
	p.voices.Of(v).ks.SetFrequency(dsp.NoteToFrequency(float32(v.Note) + p.bend))
}

func (p *Pluck) Start(v *voice.Voice) {
	s := p.voices.Reset(v)
	s.ks.Init(p.fs)
	s.ks.SetAttenuation(p.attenuate)
	s.pan.Set(p.vol, p.pan)
	p.setFrequency(v)
}

func (p *Pluck) Stop(v *voice.Voice) {}

func (p *Pluck) NoteOn(v *voice.Voice, vel uint8) {
	p.voices.Of(v).ks.Pluck(&p.rng)
}

func (p *Pluck) NoteOff(v *voice.Voice, vel uint8) {}

func (p *Pluck) Active(v *voice.Voice) bool { return true }

func (p *Pluck) Generate(v *voice.Voice, outL, outR []float32) {
	s := p.voices.Of(v)
	out := p.out[:len(outL)]
	s.ks.Generate(out)
	s.pan.Generate(outL, outR, out)
}

func (p *Pluck) ControlChange(ctrl, val uint8) {
	switch ctrl {
	case ccAttenuate:
		p.attenuate = dsp.Map(val, 0.87, 1)
		for v := range p.host.Voices(p) {
			p.voices.Of(v).ks.SetAttenuation(p.attenuate)
		}
	case ccPan:
		p.pan = dsp.Map(val, 0, 1)
		for v := range p.host.Voices(p) {
			p.voices.Of(v).pan.Set(p.vol, p.pan)
		}
	}
}

func (p *Pluck) PitchWheel(val uint16) {
	p.bend = dsp.PitchBend(val)
	for v := range p.host.Voices(p) {
		p.setFrequency(v)
	}
}
