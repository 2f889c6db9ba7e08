// Package computer composes the keyboard, resolver and motion components
// into the Keyboard and Mouse an automation agent drives.
package computer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/keyboard"
	"github.com/v0xg/deskpilot/internal/keys"
	"github.com/v0xg/deskpilot/internal/motion"
	"github.com/v0xg/deskpilot/internal/resolver"
)

// Config wires a Computer to its collaborators. Input, Clipboard and Display
// are required; zero durations take the component defaults.
type Config struct {
	Input     desktop.Input
	Clipboard desktop.Clipboard
	Display   desktop.Display

	// Platform selects the hotkey strategy; empty means runtime.GOOS.
	Platform string
	Script   keys.ScriptRunner

	Settle        time.Duration
	WriteDelay    time.Duration
	KeyInterval   time.Duration
	ClickInterval time.Duration
	MoveDuration  time.Duration
	MoveSample    time.Duration

	// Verbose attaches annotated screenshots to resolved targets.
	Verbose bool

	Sleep  func(time.Duration)
	Now    func() time.Time
	Logger *slog.Logger
}

// Computer is the entry point for synthesized input.
type Computer struct {
	Keyboard *keyboard.Keyboard
	Mouse    *Mouse
}

// New validates cfg and builds a Computer.
func New(cfg Config) (*Computer, error) {
	var missing []error
	if cfg.Input == nil {
		missing = append(missing, errors.New("input primitive"))
	}
	if cfg.Clipboard == nil {
		missing = append(missing, errors.New("clipboard"))
	}
	if cfg.Display == nil {
		missing = append(missing, errors.New("display"))
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("computer: missing capability: %w", errors.Join(missing...))
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}

	mapper, err := keys.NewMapper(cfg.Input, keys.Options{
		Platform: cfg.Platform,
		Settle:   cfg.Settle,
		Interval: cfg.KeyInterval,
		Script:   cfg.Script,
		Sleep:    cfg.Sleep,
		Logger:   cfg.Logger.With("component", "keys"),
	})
	if err != nil {
		return nil, err
	}

	kb, err := keyboard.New(cfg.Input, mapper, cfg.Clipboard, keyboard.Options{
		Delay:  cfg.WriteDelay,
		Sleep:  cfg.Sleep,
		Logger: cfg.Logger.With("component", "keyboard"),
	})
	if err != nil {
		return nil, err
	}

	res, err := resolver.New(cfg.Display, resolver.Options{
		Verbose: cfg.Verbose,
		Logger:  cfg.Logger.With("component", "resolver"),
	})
	if err != nil {
		return nil, err
	}

	synth, err := motion.NewSynthesizer(cfg.Input, motion.Options{
		Duration: cfg.MoveDuration,
		Sample:   cfg.MoveSample,
		Now:      cfg.Now,
		Sleep:    cfg.Sleep,
	})
	if err != nil {
		return nil, err
	}

	interval := cfg.ClickInterval
	if interval == 0 {
		interval = DefaultClickInterval
	}

	return &Computer{
		Keyboard: kb,
		Mouse: &Mouse{
			input:    cfg.Input,
			resolver: res,
			motion:   synth,
			interval: interval,
			logger:   cfg.Logger.With("component", "mouse"),
		},
	}, nil
}
