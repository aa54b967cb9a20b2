package serialmidi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.bug.st/serial"

	"github.com/deadsy/googoomuck-sub000/internal/event"
)

// Baud is the MIDI serial bit rate.
const Baud = 31250

// PostFunc hands an event to the synth.
type PostFunc func(event.Event) error

type Option func(*Reader)

func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) { r.log = l }
}

// Reader reads MIDI bytes and posts a Midi event for each message.
type Reader struct {
	src    io.Reader
	post   PostFunc
	log    *slog.Logger
	parser Parser
	posted uint64
}

func NewReader(src io.Reader, post PostFunc, opts ...Option) *Reader {
	r := &Reader{src: src, post: post, log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Posted returns the number of messages posted so far.
func (r *Reader) Posted() uint64 { return r.posted }

// Run reads until the source is exhausted or ctx is done. A source that
// returns io.EOF ends the run without error. Events the synth cannot accept
// are dropped and logged.
func (r *Reader) Run(ctx context.Context) error {
	buf := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.src.Read(buf)
		for _, b := range buf[:n] {
			msg, ok := r.parser.Feed(b)
			if !ok {
				continue
			}
			if perr := r.post(event.NewMIDI(msg)); perr != nil {
				r.log.Warn("midi event dropped", "msg", msg.String(), "err", perr)
				continue
			}
			r.posted++
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Open opens a serial port at the MIDI bit rate (or baud, if non-zero). Reads
// time out periodically so Run notices cancellation.
func Open(name string, baud int) (serial.Port, error) {
	if baud == 0 {
		baud = Baud
	}
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(100 * time.Millisecond); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// Ports lists the serial ports present on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
