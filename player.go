package ggm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/deadsy/googoomuck-sub000/internal/output"
)

// Player plays a Synth through the system audio device. It runs the synth's
// main loop on its own goroutine.
type Player struct {
	mu     sync.Mutex
	synth  *Synth
	audio  *output.Player
	cancel context.CancelFunc
	done   chan error
}

func NewPlayer(s *Synth) (*Player, error) {
	if s == nil {
		return nil, errors.New("ggm: nil synth")
	}
	backend, err := output.NewPlayer(s.SampleRate(), s.Buffer())
	if err != nil {
		return nil, err
	}
	return &Player{synth: s, audio: backend}, nil
}

// Play starts the main loop, if it is not already running, and the device.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.done = make(chan error, 1)
		go func() { p.done <- p.synth.Run(ctx) }()
	}
	p.audio.Play()
}

// Pause stops the device. The synth keeps handling MIDI and key events.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audio.Pause()
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audio.IsPlaying()
}

// Position returns how long the device has been playing.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audio.Position()
}

// Close stops the device and the main loop.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.audio.Close()
	if p.cancel != nil {
		p.cancel()
		<-p.done
		p.cancel = nil
	}
	return err
}
