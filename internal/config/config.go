// Package config loads the synthesizer settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid")

// Config is the on-disk configuration. Zero fields take their defaults.
type Config struct {
	SampleRate   int            `yaml:"sample_rate"`
	BlockSize    int            `yaml:"block_size"`
	QueueSize    int            `yaml:"queue_size"`
	MasterVolume float32        `yaml:"master_volume"`
	Patches      map[int]string `yaml:"patches"` // channel -> patch name
	Sequencer    Sequencer      `yaml:"sequencer"`
	Keys         map[string]Key `yaml:"keys,omitempty"`
	Serial       Serial         `yaml:"serial,omitempty"`
	Effects      Effects        `yaml:"effects,omitempty"`
}

type Sequencer struct {
	BPM       float64 `yaml:"bpm"`
	Channel   int     `yaml:"channel"`
	Program   string  `yaml:"program,omitempty"` // assembler text, empty for the metronome
	Autostart bool    `yaml:"autostart"`
}

// Key maps a terminal key to a note.
type Key struct {
	Channel  int `yaml:"channel"`
	Note     int `yaml:"note"`
	Velocity int `yaml:"velocity"`
}

// Effects configures the master bus. A nil stage is bypassed; stages run
// in the order drive, delay, compressor.
type Effects struct {
	Drive      *Drive      `yaml:"drive,omitempty"`
	Delay      *Delay      `yaml:"delay,omitempty"`
	Compressor *Compressor `yaml:"compressor,omitempty"`
}

type Drive struct {
	Pre    float32 `yaml:"pre"`
	Post   float32 `yaml:"post"`
	Cutoff float32 `yaml:"cutoff"` // Hz, 0 for none
}

type Delay struct {
	Time     float32 `yaml:"time"` // seconds
	Feedback float32 `yaml:"feedback"`
	Cross    float32 `yaml:"cross"`
	Wet      float32 `yaml:"wet"`
}

type Compressor struct {
	Threshold float32 `yaml:"threshold"` // dB
	Ratio     float32 `yaml:"ratio"`
	Attack    float32 `yaml:"attack"`  // seconds
	Release   float32 `yaml:"release"` // seconds
	Makeup    float32 `yaml:"makeup"`  // dB
}

type Serial struct {
	Port string `yaml:"port,omitempty"`
	Baud int    `yaml:"baud,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SampleRate:   44100,
		BlockSize:    128,
		QueueSize:    16,
		MasterVolume: 1,
		Patches: map[int]string{
			0: "goomvoice",
			1: "sine",
			2: "pluck",
			3: "goom",
			4: "fm",
			5: "noise",
		},
		Sequencer: Sequencer{
			BPM:     120,
			Channel: 1,
		},
		Keys: map[string]Key{
			"a": {0, 60, 100},
			"w": {0, 61, 100},
			"s": {0, 62, 100},
			"e": {0, 63, 100},
			"d": {0, 64, 100},
			"f": {0, 65, 100},
			"t": {0, 66, 100},
			"g": {0, 67, 100},
			"y": {0, 68, 100},
			"h": {0, 69, 100},
			"u": {0, 70, 100},
			"j": {0, 71, 100},
			"k": {0, 72, 100},
		},
		Serial: Serial{Baud: 31250},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r over the defaults and validates the result.
// Unknown fields are an error.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Validate checks ranges. Patch names are checked when the synth is built.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}
	check(c.SampleRate >= 8000 && c.SampleRate <= 192000, "sample_rate %d", c.SampleRate)
	check(c.BlockSize > 0 && c.BlockSize <= 512, "block_size %d", c.BlockSize)
	check(c.QueueSize >= 2 && c.QueueSize&(c.QueueSize-1) == 0, "queue_size %d is not a power of two", c.QueueSize)
	check(c.MasterVolume >= 0 && c.MasterVolume <= 4, "master_volume %v", c.MasterVolume)
	check(c.Sequencer.BPM > 0, "sequencer bpm %v", c.Sequencer.BPM)
	check(validChannel(c.Sequencer.Channel), "sequencer channel %d", c.Sequencer.Channel)
	for ch, name := range c.Patches {
		check(validChannel(ch), "patch channel %d", ch)
		check(strings.TrimSpace(name) != "", "patch name for channel %d", ch)
	}
	for name, k := range c.Keys {
		check(len([]rune(name)) == 1, "key %q must be a single character", name)
		check(validChannel(k.Channel), "key %q channel %d", name, k.Channel)
		check(k.Note >= 0 && k.Note < 128, "key %q note %d", name, k.Note)
		check(k.Velocity > 0 && k.Velocity < 128, "key %q velocity %d", name, k.Velocity)
	}
	check(c.Serial.Baud >= 0, "serial baud %d", c.Serial.Baud)
	if d := c.Effects.Drive; d != nil {
		check(d.Pre > 0 && d.Post >= 0 && d.Cutoff >= 0, "drive %+v", *d)
	}
	if d := c.Effects.Delay; d != nil {
		check(d.Time > 0 && d.Time <= 2, "delay time %v", d.Time)
		check(d.Feedback >= 0 && d.Feedback < 1, "delay feedback %v", d.Feedback)
		check(d.Cross >= 0 && d.Cross <= 1 && d.Wet >= 0 && d.Wet <= 1, "delay mix %+v", *d)
	}
	if cp := c.Effects.Compressor; cp != nil {
		check(cp.Ratio >= 1, "compressor ratio %v", cp.Ratio)
		check(cp.Attack >= 0 && cp.Release >= 0, "compressor times %+v", *cp)
	}
	return errors.Join(errs...)
}

func validChannel(ch int) bool { return ch >= 0 && ch < 16 }
