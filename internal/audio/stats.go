package audio

import (
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// NumMargins is the size of the recent margin window.
	NumMargins = 64
	// LogEvery is how many blocks pass between summary log lines.
	LogEvery = 1024
)

// Stats tracks how far ahead of the device each rendered block was.
//
// The margin of a block is the number of frames the device still had to
// read before reaching the half that was just written. A block written into
// the half the device is currently reading is an underrun.
type Stats struct {
	mu        sync.Mutex
	frames    int
	blocks    uint64
	underruns uint64
	min, max  int
	window    [NumMargins]float64
	idx       int
	filled    int
	log       *slog.Logger
}

type StatsOption func(*Stats)

func WithStatsLogger(l *slog.Logger) StatsOption {
	return func(s *Stats) { s.log = l }
}

// NewStats returns statistics for a double buffer with halves of frames
// frames.
func NewStats(frames int, opts ...StatsOption) *Stats {
	s := &Stats{frames: frames, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func (s *Stats) reset() {
	s.blocks, s.underruns = 0, 0
	s.min, s.max = 2*s.frames, 0
	s.idx, s.filled = 0, 0
}

// Reset clears all counters.
func (s *Stats) Reset() {
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
}

// Record accounts for a block written into half (0 lower, 1 upper) while the
// device was at frame readPos. It returns the margin in frames, or false on
// an underrun.
func (s *Stats) Record(half, readPos int) (int, bool) {
	margin, ok := s.margin(half, readPos)

	s.mu.Lock()
	s.blocks++
	if ok {
		s.window[s.idx] = float64(margin)
		s.idx = (s.idx + 1) % NumMargins
		s.filled = min(s.filled+1, NumMargins)
		s.min = min(s.min, margin)
		s.max = max(s.max, margin)
	} else {
		s.underruns++
	}
	report := s.blocks%LogEvery == 0
	s.mu.Unlock()

	if report {
		s.log.Info("audio stats", "stats", s.Snapshot())
	}
	return margin, ok
}

func (s *Stats) margin(half, readPos int) (int, bool) {
	if half == 0 {
		if readPos < s.frames {
			return 0, false
		}
		return 2*s.frames - readPos, true
	}
	if readPos >= s.frames {
		return 0, false
	}
	return s.frames - readPos, true
}

// Snapshot is a consistent copy of the statistics.
type Snapshot struct {
	Blocks    uint64
	Underruns uint64
	Min, Max  int // over all blocks, in frames
	Window    int // number of margins in the recent window
	Mean      float64
	WindowMin float64
	WindowMax float64
}

// Snapshot returns the current statistics.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Blocks:    s.blocks,
		Underruns: s.underruns,
		Min:       s.min,
		Max:       s.max,
		Window:    s.filled,
	}
	if s.filled > 0 {
		w := s.window[:s.filled]
		snap.Mean = stat.Mean(w, nil)
		snap.WindowMin = floats.Min(w)
		snap.WindowMax = floats.Max(w)
	}
	return snap
}

func (s Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("blocks", s.Blocks),
		slog.Uint64("underruns", s.Underruns),
		slog.Int("min", s.Min),
		slog.Int("max", s.Max),
		slog.Float64("mean", s.Mean),
		slog.Float64("window_min", s.WindowMin),
		slog.Float64("window_max", s.WindowMax),
	)
}
