// Package browser provides desktop collaborators backed by a Chromium page:
// pointer and keyboard dispatch, screenshots, a DOM text/icon finder, and a
// page-scoped clipboard.
package browser

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/v0xg/deskpilot/internal/keys"
)

// Platform is the hotkey family of a page-backed Input.
const Platform = keys.PlatformBrowser

// Options configures the browser launch.
type Options struct {
	URL        string
	Width      int
	Height     int
	Headless   bool
	Timeout    time.Duration
	ProfileDir string // Chrome/Chromium profile directory for authenticated sessions
}

// Browser wraps the Rod browser and the page all input is sent to.
type Browser struct {
	browser *rod.Browser
	page    *rod.Page
	sleep   func(time.Duration)
}

// Launch starts a browser, opens opts.URL and waits for it to settle.
func Launch(opts Options) (*Browser, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid viewport %dx%d", opts.Width, opts.Height)
	}

	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(opts.Headless)
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u).Timeout(opts.Timeout)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	browser = browser.CancelTimeout()

	page, err := browser.Page(proto.TargetCreateTarget{URL: opts.URL})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("open %s: %w", opts.URL, err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.Timeout(opts.Timeout).WaitLoad(); err != nil {
		browser.Close()
		return nil, fmt.Errorf("wait for load: %w", err)
	}

	// Wait for network idle with timeout (don't hang on persistent connections)
	page.Timeout(5*time.Second).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()

	return &Browser{browser: browser, page: page, sleep: time.Sleep}, nil
}

// Close cleans up browser resources
func (b *Browser) Close() {
	if b.page != nil {
		b.page.Close()
	}
	if b.browser != nil {
		b.browser.Close()
	}
}
