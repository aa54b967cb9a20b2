package patch

import (
	"github.com/deadsy/googoomuck-sub000/internal/block"
	"github.com/deadsy/googoomuck-sub000/internal/dsp"
	"github.com/deadsy/googoomuck-sub000/internal/voice"
)

// Fixed modulator notes.
const (
	noteLo = 12
	noteHi = 36
)

// How the modulator combines with the main oscillator.
const (
	modeMix = iota
	modeFM
)

const (
	ccModLevel  = 1
	ccModAttack = 2
	ccModDecay  = 3
	ccModMode   = 4
	ccCutoff    = 7
	ccResonance = 8
)

const maxModLevel = 40

// GoomVoice is a two oscillator goom voice. Oscillator 1, shaped by its own
// AD envelope, either frequency modulates oscillator 0 or is mixed into it.
// The result goes through a lowpass filter whose cutoff follows a filter
// envelope and the note velocity, then an amplitude envelope.
type GoomVoice struct {
	base
	voices voice.States[goomVoiceState]

	o0Duty, o0Slope float32
	o1Duty, o1Slope float32
	fixedNote       int // 0 tracks the played note
	mode            int
	egA, egD        float32
	modLevel        float32

	fegA, fegD, fegS, fegR float32
	sensitivity            float32 // filter envelope depth, multiples of the note frequency
	cutoff                 float32 // multiples of the note frequency
	resonance              float32

	aegA, aegD, aegS, aegR float32
	vol, pan               float32

	buf0, buf1, mono [block.MaxSize]float32
}

type goomVoiceState struct {
	o0, o1   dsp.GWave
	eg       dsp.ADSR
	feg, aeg dsp.ADSR
	lpf      dsp.SVF
	pan      dsp.Pan
	velocity float32
	freq     float32
}

func (p *GoomVoice) Init(h voice.Host) {
	p.bind(h)
	p.o0Duty, p.o0Slope = 0.3, 0.9
	p.o1Duty, p.o1Slope = 0.5, 0.9
	p.fixedNote = noteLo
	p.mode = modeFM
	p.egA, p.egD = 0.05, 0.5
	p.modLevel = 5
	p.fegA, p.fegD, p.fegS, p.fegR = 0.05, 0.2, 0.5, 0.5
	p.sensitivity = 8
	p.cutoff = 2
	p.resonance = 0.5
	p.aegA, p.aegD, p.aegS, p.aegR = 0.05, 0.2, 0.5, 0.5
	p.vol = 0.3
	p.pan = 0.5
}

func (p *GoomVoice) Start(v *voice.Voice) {
	s := p.voices.Reset(v)
	s.freq = dsp.NoteToFrequency(float32(v.Note))
	s.o0.Init(s.freq, p.fs)
	s.o0.SetShape(p.o0Duty, p.o0Slope)
	n := p.fixedNote
	if n == 0 {
		n = int(v.Note)
	}
	s.o1.Init(dsp.NoteToFrequency(float32(n)), p.fs)
	s.o1.SetShape(p.o1Duty, p.o1Slope)
	s.lpf.Init(p.cutoff*s.freq, p.resonance, p.fs)
	s.pan.Set(1, p.pan)
}

func (p *GoomVoice) Stop(v *voice.Voice) {}

func (p *GoomVoice) NoteOn(v *voice.Voice, vel uint8) {
	s := p.voices.Of(v)
	s.velocity = float32(vel) / 127
	s.eg.InitAD(p.egA, p.egD, p.fs)
	s.eg.Attack()
	s.feg.Init(p.fegA, p.fegD, p.fegS, p.fegR, p.fs)
	s.feg.Attack()
	s.aeg.Init(p.aegA, p.aegD, p.aegS, p.aegR, p.fs)
	s.aeg.Attack()
}

func (p *GoomVoice) NoteOff(v *voice.Voice, vel uint8) {
	s := p.voices.Of(v)
	s.eg.Release()
	s.feg.Release()
	s.aeg.Release()
}

func (p *GoomVoice) Active(v *voice.Voice) bool {
	return p.voices.Of(v).aeg.Active()
}

func (p *GoomVoice) Generate(v *voice.Voice, outL, outR []float32) {
	s := p.voices.Of(v)
	n := len(outL)
	buf0, buf1, mono := p.buf0[:n], p.buf1[:n], p.mono[:n]

	// oscillator 1
	s.eg.Generate(buf0)
	s.o1.Generate(buf1, nil)
	block.Mul(buf1, buf0)

	// oscillator 0
	if p.mode == modeMix {
		block.MulK(buf1, p.modLevel/maxModLevel)
		s.o0.Generate(buf0, nil)
		block.Add(buf0, buf1)
		block.MulK(buf0, 0.5)
	} else {
		// modulation index: deviation in multiples of the modulator frequency
		block.MulK(buf1, p.modLevel*s.o1.Frequency())
		s.o0.Generate(buf0, buf1)
	}

	// filter
	s.feg.Generate(buf1)
	block.MulK(buf1, s.velocity*p.sensitivity)
	block.AddK(buf1, p.cutoff)
	block.MulK(buf1, s.freq)
	s.lpf.GenerateMod(mono, buf0, buf1)

	// amplitude
	s.aeg.Generate(buf0)
	block.MulK(buf0, s.velocity*p.vol)
	block.Mul(mono, buf0)
	s.pan.Generate(outL, outR, mono)
}

func (p *GoomVoice) ControlChange(ctrl, val uint8) {
	switch ctrl {
	case ccModLevel:
		p.modLevel = dsp.Map(val, 5, maxModLevel)
	case ccModAttack:
		p.egA = dsp.Map(val, 0.01, 1)
	case ccModDecay:
		p.egD = dsp.Map(val, 0.05, 5)
	case ccModMode:
		p.mode = modeFM
		if val < 64 {
			p.mode = modeMix
		}
	case ccCutoff:
		p.cutoff = dsp.Map(val, 0.5, 10)
	case ccResonance:
		p.resonance = dsp.Map(val, 0, 1)
		for v := range p.host.Voices(p) {
			p.voices.Of(v).lpf.SetResonance(p.resonance)
		}
	}
}

// PitchWheel is ignored; the modulator may run at a fixed note.
func (p *GoomVoice) PitchWheel(val uint16) {}
