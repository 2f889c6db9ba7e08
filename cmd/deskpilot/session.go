package main

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/v0xg/deskpilot/internal/ai"
	"github.com/v0xg/deskpilot/internal/browser"
	"github.com/v0xg/deskpilot/internal/clipboard"
	"github.com/v0xg/deskpilot/internal/computer"
	"github.com/v0xg/deskpilot/internal/config"
	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/keys"
	"github.com/v0xg/deskpilot/internal/logging"
	"github.com/v0xg/deskpilot/internal/snapshot"
)

// session is a launched browser with a Computer driving it.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	browser  *browser.Browser
	computer *computer.Computer
}

func (s *session) Close() {
	s.browser.Close()
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Browser.URL = url
	}
	if flags.Changed("finder") {
		cfg.Finder = finder
	}
	if flags.Changed("model") {
		cfg.Model = model
	}
	if flags.Changed("clipboard") {
		cfg.Clipboard = clipMode
	}
	if flags.Changed("annotate-dir") {
		cfg.AnnotateDir = annotateDir
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if flags.Changed("profile") {
		cfg.Browser.Profile = profile
	}
	if flags.Changed("width") {
		cfg.Browser.Width = width
	}
	if flags.Changed("height") {
		cfg.Browser.Height = height
	}
	if verbose {
		cfg.Verbose = true
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}

	logVerbose("→ Opening %s... ", cfg.Browser.URL)
	b, err := browser.Launch(browser.Options{
		URL:        cfg.Browser.URL,
		Width:      cfg.Browser.Width,
		Height:     cfg.Browser.Height,
		Headless:   cfg.Browser.Headless,
		ProfileDir: cfg.Browser.Profile,
	})
	if err != nil {
		logVerbose("failed\n")
		return nil, desktop.Unavailable("browser", err)
	}
	logVerbose("done\n")

	find, err := newFinder(cfg, b)
	if err != nil {
		b.Close()
		return nil, err
	}

	clip, err := newClipboard(cfg, b, logger)
	if err != nil {
		b.Close()
		return nil, err
	}

	c, err := computer.New(computer.Config{
		Input:         b,
		Clipboard:     clip,
		Display:       desktop.NewDisplay(b, find),
		Platform:      browser.Platform,
		Settle:        cfg.Timing.Settle,
		WriteDelay:    cfg.Timing.WriteDelay,
		KeyInterval:   cfg.Timing.KeyInterval,
		ClickInterval: cfg.Timing.ClickInterval,
		MoveDuration:  cfg.Motion.Duration,
		MoveSample:    cfg.Motion.Sample,
		Verbose:       cfg.Verbose || cfg.AnnotateDir != "",
		Logger:        logger,
	})
	if err != nil {
		b.Close()
		return nil, err
	}

	return &session{cfg: cfg, logger: logger, browser: b, computer: c}, nil
}

func newFinder(cfg *config.Config, b *browser.Browser) (desktop.Finder, error) {
	if cfg.Finder == config.FinderDOM {
		return b, nil
	}
	f, err := ai.NewFinder(cfg.Finder, ai.Options{Model: cfg.Model, MaxWidth: cfg.Vision.MaxWidth})
	if err != nil {
		return nil, fmt.Errorf("finder init failed: %w", err)
	}
	return f, nil
}

func newClipboard(cfg *config.Config, b *browser.Browser, logger *slog.Logger) (desktop.Clipboard, error) {
	if cfg.Clipboard == config.ClipboardPage {
		return b.Clipboard(), nil
	}
	// The system clipboard pastes with its own mapper over the same input.
	mapper, err := keys.NewMapper(b, keys.Options{
		Platform: browser.Platform,
		Settle:   cfg.Timing.Settle,
		Interval: cfg.Timing.KeyInterval,
		Logger:   logger.With("component", "clipboard"),
	})
	if err != nil {
		return nil, err
	}
	clip, err := clipboard.NewSystem(mapper)
	if err != nil {
		return nil, desktop.Unavailable("system clipboard", err)
	}
	return clip, nil
}

// saveAnnotated writes img to the annotate directory and reports the path.
func (s *session) saveAnnotated(name string, img image.Image) {
	if img == nil || s.cfg.AnnotateDir == "" {
		return
	}
	if err := os.MkdirAll(s.cfg.AnnotateDir, 0o755); err != nil {
		s.logger.Warn("annotate dir unavailable", "dir", s.cfg.AnnotateDir, "err", err)
		return
	}
	path := filepath.Join(s.cfg.AnnotateDir, fmt.Sprintf("%s-%s.png", name, time.Now().Format("20060102-150405.000")))
	size, err := snapshot.Save(path, snapshot.Downscale(img, s.cfg.Vision.MaxWidth))
	if err != nil {
		s.logger.Warn("annotated screenshot not saved", "path", path, "err", err)
		return
	}
	fmt.Printf("  annotated screenshot: %s (%.1f KB)\n", path, float64(size)/1024)
}

// saveFailure keeps the annotated candidates of an ambiguous target.
func (s *session) saveFailure(name string, err error) {
	var amb *desktop.AmbiguousError
	if errors.As(err, &amb) {
		s.saveAnnotated(name+"-candidates", amb.Annotated)
	}
}

// logVerbose writes to stderr; stdout may carry the MCP protocol.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
