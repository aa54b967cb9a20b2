package keys

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/deadsy/googoomuck-sub000/internal/event"
)

// ErrQuit is returned by Run when the user asks to quit.
var ErrQuit = errors.New("keys: quit")

// DefaultRelease is how long a key is held after its last character arrives.
// Terminals only report presses, and auto-repeat refreshes a held key.
const DefaultRelease = 300 * time.Millisecond

type Option func(*Terminal)

func WithRelease(d time.Duration) Option {
	return func(t *Terminal) { t.release = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Terminal) { t.log = l }
}

// Terminal reads characters and posts KeyDown/KeyUp events for the keys of
// a layout. 'q' and Ctrl-C quit.
type Terminal struct {
	in      io.Reader
	layout  *Layout
	post    func(event.Event) error
	release time.Duration
	log     *slog.Logger
	held    map[int]time.Time // key id -> release deadline
}

func NewTerminal(in io.Reader, layout *Layout, post func(event.Event) error, opts ...Option) *Terminal {
	t := &Terminal{
		in:      in,
		layout:  layout,
		post:    post,
		release: DefaultRelease,
		log:     slog.Default(),
		held:    make(map[int]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.release <= 0 {
		t.release = DefaultRelease
	}
	return t
}

// Run posts key events until ctx is done, the input ends or the user quits.
// Keys still held when Run returns are released.
func (t *Terminal) Run(ctx context.Context) error {
	chars := make(chan byte)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := t.in.Read(buf)
			if n > 0 {
				select {
				case chars <- buf[0]:
				case <-stop:
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	tick := time.NewTicker(t.release / 4)
	defer tick.Stop()
	defer t.releaseAll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case b := <-chars:
			if b == 'q' || b == 0x03 {
				return ErrQuit
			}
			t.press(rune(b), time.Now())
		case now := <-tick.C:
			t.expire(now)
		}
	}
}

func (t *Terminal) press(r rune, now time.Time) {
	id, ok := t.layout.ID(r)
	if !ok {
		return
	}
	if _, down := t.held[id]; !down {
		t.send(event.NewKeyDown(id))
	}
	t.held[id] = now.Add(t.release)
}

func (t *Terminal) expire(now time.Time) {
	for id, deadline := range t.held {
		if !now.Before(deadline) {
			delete(t.held, id)
			t.send(event.NewKeyUp(id))
		}
	}
}

func (t *Terminal) releaseAll() {
	for id := range t.held {
		delete(t.held, id)
		t.send(event.NewKeyUp(id))
	}
}

func (t *Terminal) send(e event.Event) {
	if err := t.post(e); err != nil {
		t.log.Warn("key event dropped", "event", e.String(), "err", err)
	}
}

// MakeRaw puts f into raw mode if it is a terminal and returns a function
// restoring the previous state.
func MakeRaw(f *os.File) (restore func(), err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, old) }, nil
}
