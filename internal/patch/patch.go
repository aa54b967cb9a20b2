// Package patch holds the timbres that can be bound to a channel.
//
// Each patch keeps its channel-wide controller values in its own fields and
// its per-voice oscillators and envelopes in a voice.States table.
package patch

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/deadsy/googoomuck-sub000/internal/voice"
)

var ErrUnknown = errors.New("patch: unknown patch")

// Controller numbers shared by most patches.
const (
	ccVolume = 1
	ccPan    = 2
)

var registry = map[string]func() voice.Patch{
	"sine":      func() voice.Patch { return &Sine{} },
	"goom":      func() voice.Patch { return &Goom{} },
	"pluck":     func() voice.Patch { return &Pluck{} },
	"goomvoice": func() voice.Patch { return &GoomVoice{} },
	"fm":        func() voice.Patch { return &FM{} },
	"noise":     func() voice.Patch { return &Noise{} },
}

// New returns a fresh instance of the named patch.
func New(name string) (voice.Patch, error) {
	mk, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnknown, name, strings.Join(Names(), "|"))
	}
	return mk(), nil
}

// Names lists the registered patch names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// base carries what every patch needs from its host.
type base struct {
	host voice.Host
	fs   int
}

func (b *base) bind(h voice.Host) {
	b.host = h
	b.fs = h.SampleRate()
}
