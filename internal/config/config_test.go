package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, "goomvoice", cfg.Patches[0])
	assert.Equal(t, 31250, cfg.Serial.Baud)
	assert.Len(t, cfg.Keys, 13)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	src := `
sample_rate: 48000
block_size: 256
patches:
  0: fm
  9: noise
sequencer:
  bpm: 90
  autostart: true
  program: |
    note 9 60 100 4
    rest 12
    loop
`
	cfg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, 256, cfg.BlockSize)
	assert.Equal(t, 16, cfg.QueueSize)
	assert.Equal(t, "fm", cfg.Patches[0])
	assert.Equal(t, "noise", cfg.Patches[9])
	assert.Equal(t, "sine", cfg.Patches[1], "maps merge into the defaults")
	assert.Equal(t, 90.0, cfg.Sequencer.BPM)
	assert.Equal(t, 1, cfg.Sequencer.Channel)
	assert.True(t, cfg.Sequencer.Autostart)
	assert.Contains(t, cfg.Sequencer.Program, "rest 12")
}

func TestDecodeEmpty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("sample_rat: 48000\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"sample rate":   func(c *Config) { c.SampleRate = 100 },
		"block size":    func(c *Config) { c.BlockSize = 1024 },
		"queue size":    func(c *Config) { c.QueueSize = 0 },
		"volume":        func(c *Config) { c.MasterVolume = -1 },
		"bpm":           func(c *Config) { c.Sequencer.BPM = 0 },
		"seq channel":   func(c *Config) { c.Sequencer.Channel = 16 },
		"patch channel": func(c *Config) { c.Patches[20] = "sine" },
		"patch name":    func(c *Config) { c.Patches[3] = " " },
		"key name":      func(c *Config) { c.Keys["ab"] = Key{0, 60, 100} },
		"key note":      func(c *Config) { c.Keys["z"] = Key{0, 128, 100} },
		"key velocity":  func(c *Config) { c.Keys["z"] = Key{0, 60, 0} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoadAndMarshal(t *testing.T) {
	cfg := Default()
	cfg.MasterVolume = 0.5
	cfg.Sequencer.Program = "note 1 60 100 4\nloop\n"
	data, err := cfg.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ggm.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeEffects(t *testing.T) {
	src := `
effects:
  delay:
    time: 0.25
    feedback: 0.4
    wet: 0.3
  compressor:
    threshold: -12
    ratio: 4
    attack: 0.005
    release: 0.1
`
	cfg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Nil(t, cfg.Effects.Drive)
	require.NotNil(t, cfg.Effects.Delay)
	assert.Equal(t, Delay{Time: 0.25, Feedback: 0.4, Wet: 0.3}, *cfg.Effects.Delay)
	require.NotNil(t, cfg.Effects.Compressor)
	assert.Equal(t, float32(4), cfg.Effects.Compressor.Ratio)

	_, err = Decode(strings.NewReader("effects:\n  delay:\n    time: 5\n"))
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = Decode(strings.NewReader("effects:\n  compressor:\n    ratio: 0.5\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}
