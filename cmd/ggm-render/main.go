// Command ggm-render renders the synthesizer offline into a WAV file.
//
// Notes are given as a comma separated list of start:note:length, in seconds
// and MIDI note numbers, e.g. -notes 0:60:0.5,0.5:64:0.5,1:67:1.
// Alternatively -program plays a sequencer program for the full duration.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2"

	ggm "github.com/deadsy/googoomuck-sub000"
	"github.com/deadsy/googoomuck-sub000/internal/config"
)

func main() {
	var (
		outPath     = flag.String("o", "out.wav", "output WAV file")
		seconds     = flag.Float64("seconds", 4, "length of the render")
		sampleRate  = flag.Int("sample-rate", 0, "sample rate (overrides config)")
		configPath  = flag.String("config", "", "YAML config file")
		programPath = flag.String("program", "", "sequencer program source to play")
		channel     = flag.Int("channel", 0, "MIDI channel for -notes")
		patchName   = flag.String("patch", "", "patch for -channel (overrides config)")
		notes       = flag.String("notes", "", "notes as start:note:length[,...]")
		velocity    = flag.Int("velocity", 100, "note velocity for -notes")
		debug       = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	fail := func(msg string, err error) {
		log.Error(msg, "err", err)
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fail("load config", err)
		}
	}
	if *sampleRate > 0 {
		cfg.SampleRate = *sampleRate
	}
	if *programPath != "" {
		src, err := os.ReadFile(*programPath)
		if err != nil {
			fail("read program", err)
		}
		cfg.Sequencer.Program = string(src)
		cfg.Sequencer.Autostart = true
	}
	if *patchName != "" {
		if cfg.Patches == nil {
			cfg.Patches = make(map[int]string)
		}
		cfg.Patches[*channel] = *patchName
	}
	if err := cfg.Validate(); err != nil {
		fail("invalid config", err)
	}
	if *channel < 0 || *channel > 15 || *velocity < 1 || *velocity > 127 {
		fail("bad flags", fmt.Errorf("channel %d velocity %d out of range", *channel, *velocity))
	}

	cues, err := parseNotes(*notes, uint8(*channel), uint8(*velocity), cfg.SampleRate)
	if err != nil {
		fail("parse notes", err)
	}

	synth, err := ggm.New(cfg.SampleRate, ggm.WithConfig(cfg), ggm.WithLogger(log))
	if err != nil {
		fail("create synth", err)
	}
	frames := int(*seconds * float64(cfg.SampleRate))
	samples := ggm.Render(synth, frames, cues...)

	f, err := os.Create(*outPath)
	if err != nil {
		fail("create output", err)
	}
	if err := ggm.WriteWAV(f, samples, cfg.SampleRate); err != nil {
		f.Close()
		fail("write wav", err)
	}
	if err := f.Close(); err != nil {
		fail("close output", err)
	}
	log.Info("rendered",
		"file", *outPath,
		"frames", frames,
		"cues", len(cues),
		"sequencer_ticks", synth.Sequencer().Ticks(),
		"stats", synth.Stats().Snapshot(),
	)
}

// parseNotes turns start:note:length triples into note on/off cues.
func parseNotes(s string, ch, vel uint8, sampleRate int) ([]ggm.Cue, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var cues []ggm.Cue
	for field := range strings.SplitSeq(s, ",") {
		parts := strings.Split(strings.TrimSpace(field), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%q: want start:note:length", field)
		}
		start, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%q: start: %w", field, err)
		}
		note, err := strconv.ParseUint(parts[1], 10, 7)
		if err != nil {
			return nil, fmt.Errorf("%q: note: %w", field, err)
		}
		length, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%q: length: %w", field, err)
		}
		if start < 0 || length <= 0 {
			return nil, fmt.Errorf("%q: negative time", field)
		}
		on := int(start * float64(sampleRate))
		off := int((start + length) * float64(sampleRate))
		cues = append(cues,
			ggm.Cue{Frame: on, Msg: midi.NoteOn(ch, uint8(note), vel)},
			ggm.Cue{Frame: off, Msg: midi.NoteOff(ch, uint8(note))},
		)
	}
	return cues, nil
}
