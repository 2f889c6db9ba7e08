// Package config loads deskpilot settings from YAML and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Finder backends.
const (
	FinderDOM    = "dom"
	FinderClaude = "claude"
	FinderOpenAI = "openai"
)

// Clipboard backends.
const (
	ClipboardPage   = "page"
	ClipboardSystem = "system"
)

type Config struct {
	Timing      Timing  `yaml:"timing"`
	Motion      Motion  `yaml:"motion"`
	Finder      string  `yaml:"finder"`
	Model       string  `yaml:"model"`
	Vision      Vision  `yaml:"vision"`
	Browser     Browser `yaml:"browser"`
	Clipboard   string  `yaml:"clipboard"`
	Verbose     bool    `yaml:"verbose"`
	AnnotateDir string  `yaml:"annotate_dir"`
	Log         Log     `yaml:"log"`
}

type Timing struct {
	Settle        time.Duration `yaml:"settle"`
	WriteDelay    time.Duration `yaml:"write_delay"`
	KeyInterval   time.Duration `yaml:"key_interval"`
	ClickInterval time.Duration `yaml:"click_interval"`
}

type Motion struct {
	Duration time.Duration `yaml:"duration"`
	// Sample is the pause between pointer samples; zero samples continuously.
	Sample time.Duration `yaml:"sample"`
}

type Vision struct {
	MaxWidth uint `yaml:"max_width"`
}

type Browser struct {
	URL      string `yaml:"url"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Headless bool   `yaml:"headless"`
	Profile  string `yaml:"profile"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timing: Timing{
			Settle:        150 * time.Millisecond,
			WriteDelay:    300 * time.Millisecond,
			KeyInterval:   100 * time.Millisecond,
			ClickInterval: 100 * time.Millisecond,
		},
		Motion: Motion{Duration: 2 * time.Second},
		Finder: FinderDOM,
		Vision: Vision{MaxWidth: 1280},
		Browser: Browser{
			URL:      "about:blank",
			Width:    1280,
			Height:   800,
			Headless: true,
		},
		Clipboard: ClipboardPage,
		Log:       Log{Level: "warn", Format: "text"},
	}
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "deskpilot", "config.yaml"), nil
}

// Load reads path, or the default location when path is empty, on top of
// the defaults, then applies environment overrides and validates. A missing
// file at the default location is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("DESKPILOT_PROVIDER"); v != "" {
		c.Finder = v
	}
	if v := getenv("DESKPILOT_MODEL"); v != "" {
		c.Model = v
	}
	if v := getenv("DESKPILOT_URL"); v != "" {
		c.Browser.URL = v
	}
	if v := getenv("DESKPILOT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	c.Finder = strings.ToLower(strings.TrimSpace(c.Finder))
	switch c.Finder {
	case FinderDOM, FinderClaude, FinderOpenAI:
	default:
		return fmt.Errorf("finder must be one of %s, %s, %s (got %q)", FinderDOM, FinderClaude, FinderOpenAI, c.Finder)
	}

	switch c.Clipboard {
	case ClipboardPage, ClipboardSystem:
	default:
		return fmt.Errorf("clipboard must be %s or %s (got %q)", ClipboardPage, ClipboardSystem, c.Clipboard)
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"timing.settle", c.Timing.Settle},
		{"timing.write_delay", c.Timing.WriteDelay},
		{"timing.key_interval", c.Timing.KeyInterval},
		{"timing.click_interval", c.Timing.ClickInterval},
		{"motion.duration", c.Motion.Duration},
		{"motion.sample", c.Motion.Sample},
	}
	for _, d := range durations {
		if d.d < 0 {
			return fmt.Errorf("%s must not be negative (got %s)", d.name, d.d)
		}
	}

	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("browser.width and browser.height must be positive (got %dx%d)", c.Browser.Width, c.Browser.Height)
	}
	if c.Vision.MaxWidth == 0 {
		return fmt.Errorf("vision.max_width must be positive")
	}
	return nil
}
