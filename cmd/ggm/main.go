// Command ggm runs the synthesizer live: audio goes to the sound card (or a
// software clock with -headless), notes come from a serial MIDI port and the
// computer keyboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	ggm "github.com/deadsy/googoomuck-sub000"
	"github.com/deadsy/googoomuck-sub000/internal/audio"
	"github.com/deadsy/googoomuck-sub000/internal/config"
	"github.com/deadsy/googoomuck-sub000/internal/keys"
	"github.com/deadsy/googoomuck-sub000/internal/patch"
	"github.com/deadsy/googoomuck-sub000/internal/serialmidi"
)

var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file")
		sampleRate  = flag.Int("sample-rate", 0, "output sample rate (overrides config)")
		blockSize   = flag.Int("block-size", 0, "frames per block (overrides config)")
		volume      = flag.Float64("volume", -1, "master volume (overrides config)")
		bpm         = flag.Float64("bpm", 0, "sequencer tempo (overrides config)")
		autostart   = flag.Bool("seq", false, "start the sequencer immediately")
		serialPort  = flag.String("serial", "", "serial MIDI port (overrides config)")
		headless    = flag.Bool("headless", false, "pace output with a software clock instead of the sound card")
		noKeys      = flag.Bool("no-keys", false, "do not read the terminal keyboard")
		statsEvery  = flag.Duration("stats", 10*time.Second, "interval between stats log lines (0 disables)")
		listPatches = flag.Bool("list-patches", false, "list patch names and exit")
		listPorts   = flag.Bool("list-ports", false, "list serial ports and exit")
		dumpConfig  = flag.Bool("dump-config", false, "print the effective config and exit")
		debug       = flag.Bool("debug", false, "enable debug logging (adds source location)")
	)
	flag.Parse()
	initLogger(*debug)

	if *listPatches {
		fmt.Println(strings.Join(patch.Names(), "\n"))
		return
	}
	if *listPorts {
		ports, err := serialmidi.Ports()
		if err != nil {
			fatal("list serial ports", err)
		}
		fmt.Println(strings.Join(ports, "\n"))
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatal("load config", err)
		}
	}
	if *sampleRate > 0 {
		cfg.SampleRate = *sampleRate
	}
	if *blockSize > 0 {
		cfg.BlockSize = *blockSize
	}
	if *volume >= 0 {
		cfg.MasterVolume = float32(*volume)
	}
	if *bpm > 0 {
		cfg.Sequencer.BPM = *bpm
	}
	if *autostart {
		cfg.Sequencer.Autostart = true
	}
	if *serialPort != "" {
		cfg.Serial.Port = *serialPort
	}
	if err := cfg.Validate(); err != nil {
		fatal("invalid config", err)
	}
	if *dumpConfig {
		data, err := cfg.Marshal()
		if err != nil {
			fatal("encode config", err)
		}
		os.Stdout.Write(data)
		return
	}

	if err := run(cfg, *headless, !*noKeys, *statsEvery); err != nil {
		fatal("ggm", err)
	}
}

func fatal(msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}

func run(cfg config.Config, headless, useKeys bool, statsEvery time.Duration) error {
	layout, err := keys.LayoutFromConfig(cfg.Keys)
	if err != nil {
		return err
	}
	synth, err := ggm.New(cfg.SampleRate,
		ggm.WithConfig(cfg),
		ggm.WithKeyMap(layout),
		ggm.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	logger.Info("ggm starting",
		"sample_rate", cfg.SampleRate,
		"block_size", cfg.BlockSize,
		"block_ms", 1000*float64(cfg.BlockSize)/float64(cfg.SampleRate),
		"headless", headless,
		"serial", cfg.Serial.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if headless {
		clock := audio.NewClock(synth.Buffer())
		g.Go(func() error { return synth.Run(ctx) })
		g.Go(func() error {
			return clock.Run(ctx, cfg.SampleRate, time.Duration(cfg.BlockSize)*time.Second/time.Duration(cfg.SampleRate))
		})
	} else {
		player, err := ggm.NewPlayer(synth)
		if err != nil {
			return err
		}
		player.Play()
		g.Go(func() error {
			<-ctx.Done()
			return player.Close()
		})
	}

	if cfg.Serial.Port != "" {
		port, err := serialmidi.Open(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return fmt.Errorf("open %s: %w", cfg.Serial.Port, err)
		}
		defer port.Close()
		logger.Info("serial midi open", "port", cfg.Serial.Port, "baud", cfg.Serial.Baud)
		r := serialmidi.NewReader(port, synth.Post, serialmidi.WithLogger(logger))
		g.Go(func() error { return r.Run(ctx) })
	}

	if useKeys {
		restore, err := keys.MakeRaw(os.Stdin)
		if err != nil {
			return err
		}
		defer restore()
		term := keys.NewTerminal(os.Stdin, layout, synth.Post, keys.WithLogger(logger))
		g.Go(func() error {
			if err := term.Run(ctx); !errors.Is(err, keys.ErrQuit) {
				return err
			}
			stop()
			return nil
		})
		logger.Info("keyboard ready", "sequencer", "1", "all_off", "2", "quit", "q")
	}

	if statsEvery > 0 {
		g.Go(func() error {
			t := time.NewTicker(statsEvery)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-t.C:
					logger.Info("audio stats", "stats", synth.Stats().Snapshot())
				}
			}
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("ggm stopped", "stats", synth.Stats().Snapshot())
	return err
}
