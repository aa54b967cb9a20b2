package dsp

import "github.com/chewxy/math32"

// EnvState is the state of an ADSR envelope.
type EnvState int

const (
	EnvIdle EnvState = iota
	EnvAttack
	EnvDecay
	EnvSustain
	EnvRelease
)

func (s EnvState) String() string {
	switch s {
	case EnvIdle:
		return "idle"
	case EnvAttack:
		return "attack"
	case EnvDecay:
		return "decay"
	case EnvSustain:
		return "sustain"
	case EnvRelease:
		return "release"
	}
	return "unknown"
}

// The exponential curves never reach their targets, so a phase ends when the
// level is within levelEpsilon of the target.
const (
	levelEpsilon   = 0.001
	lnLevelEpsilon = -6.9077553 // ln(levelEpsilon)
)

// envK returns the one pole coefficient that gets within levelEpsilon of the
// target in t seconds.
func envK(t float32, sampleRate int) float32 {
	if t <= 0 {
		return 1
	}
	return 1 - math32.Exp(lnLevelEpsilon/(t*float32(sampleRate)))
}

// ADSR is an attack/decay/sustain/release envelope with exponential segments.
// Output is in [0, 1].
type ADSR struct {
	state EnvState
	val   float32
	s     float32
	ka    float32
	kd    float32
	kr    float32

	dTrigger float32 // attack -> decay
	sTrigger float32 // decay -> sustain
	iTrigger float32 // release -> idle
}

// Init configures the envelope and puts it in the idle state.
// a, d and r are times in seconds (>= 0), s is the sustain level (0..1).
func (e *ADSR) Init(a, d, s, r float32, sampleRate int) {
	s = clamp(s, 0, 1)
	*e = ADSR{
		s:        s,
		ka:       envK(a, sampleRate),
		kd:       envK(d, sampleRate),
		kr:       envK(r, sampleRate),
		dTrigger: 1 - levelEpsilon,
		sTrigger: s + (1-s)*levelEpsilon,
		iTrigger: s * levelEpsilon,
	}
	if e.iTrigger == 0 {
		// with no sustain level a release from attack would otherwise
		// only end on underflow
		e.iTrigger = levelEpsilon * levelEpsilon
	}
}

// InitAD configures an attack/decay envelope (no sustain, no release time).
func (e *ADSR) InitAD(a, d float32, sampleRate int) {
	e.Init(a, d, 0, 0, sampleRate)
}

// Attack starts the attack phase from the current level.
func (e *ADSR) Attack() {
	e.state = EnvAttack
}

// Release starts the release phase. It is a no-op when idle, and goes
// straight to idle when the release time is zero.
func (e *ADSR) Release() {
	if e.state == EnvIdle {
		return
	}
	if e.kr == 1 {
		e.Idle()
		return
	}
	e.state = EnvRelease
}

// Idle silences the envelope immediately.
func (e *ADSR) Idle() {
	e.val = 0
	e.state = EnvIdle
}

// Active reports whether the envelope is producing output.
func (e *ADSR) Active() bool {
	return e.state != EnvIdle
}

func (e *ADSR) State() EnvState { return e.state }

func (e *ADSR) Level() float32 { return e.val }

func (e *ADSR) sample() float32 {
	switch e.state {
	case EnvAttack:
		if e.val < e.dTrigger {
			e.val += e.ka * (1 - e.val)
		} else {
			e.val = 1
			e.state = EnvDecay
		}
	case EnvDecay:
		if e.val > e.sTrigger {
			e.val += e.kd * (e.s - e.val)
		} else if e.s != 0 {
			e.val = e.s
			e.state = EnvSustain
		} else {
			e.Idle()
		}
	case EnvRelease:
		if e.val > e.iTrigger {
			e.val -= e.kr * e.val
		} else {
			e.Idle()
		}
	}
	return e.val
}

// Generate renders len(out) envelope samples.
func (e *ADSR) Generate(out []float32) {
	for i := range out {
		out[i] = e.sample()
	}
}
