// Package keys maps abstract key and hotkey requests onto the OS input
// primitive, including the macOS path where two-symbol modifier chords are
// sent as a scripted keystroke.
package keys

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/v0xg/deskpilot/internal/desktop"
)

// PlatformBrowser is the family of backends that dispatch keys as page
// events. Chords always go through the input primitive there.
const PlatformBrowser = "browser"

// DefaultSettle brackets every press, release and hotkey.
const DefaultSettle = 150 * time.Millisecond

// DefaultInterval separates the key-downs of a chord.
const DefaultInterval = 100 * time.Millisecond

// ScriptRunner executes an AppleScript source.
type ScriptRunner interface {
	Run(script string) error
}

// Osascript runs scripts through the osascript binary.
type Osascript struct{}

func (Osascript) Run(script string) error {
	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Options configures a Mapper.
type Options struct {
	// Platform defaults to runtime.GOOS.
	Platform string
	Settle   time.Duration
	Interval time.Duration
	Script   ScriptRunner
	Sleep    func(time.Duration)
	Logger   *slog.Logger
}

// Mapper translates key requests into Input primitive calls.
type Mapper struct {
	input    desktop.Input
	platform string
	settle   time.Duration
	interval time.Duration
	script   ScriptRunner
	sleep    func(time.Duration)
	logger   *slog.Logger
}

// NewMapper creates a mapper over input.
func NewMapper(input desktop.Input, opts Options) (*Mapper, error) {
	if input == nil {
		return nil, errors.New("keys: input primitive is required")
	}
	m := &Mapper{
		input:    input,
		platform: opts.Platform,
		settle:   opts.Settle,
		interval: opts.Interval,
		script:   opts.Script,
		sleep:    opts.Sleep,
		logger:   opts.Logger,
	}
	if m.platform == "" {
		m.platform = runtime.GOOS
	}
	if m.settle == 0 {
		m.settle = DefaultSettle
	}
	if m.interval == 0 {
		m.interval = DefaultInterval
	}
	if m.script == nil {
		m.script = Osascript{}
	}
	if m.sleep == nil {
		m.sleep = time.Sleep
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return m, nil
}

// Platform reports the platform family the mapper targets.
func (m *Mapper) Platform() string { return m.platform }

// Press taps each key presses times, waiting interval between taps.
func (m *Mapper) Press(keys []string, presses int, interval time.Duration) error {
	if len(keys) == 0 {
		return fmt.Errorf("press: %w: no keys given", desktop.ErrInvalidQuery)
	}
	if presses < 1 {
		presses = 1
	}
	m.sleep(m.settle)
	err := desktop.Injection("press", m.input.Press(keys, presses, interval))
	m.sleep(m.settle)
	return err
}

// PressAndRelease is Press.
func (m *Mapper) PressAndRelease(keys []string, presses int, interval time.Duration) error {
	return m.Press(keys, presses, interval)
}

// Down holds key down.
func (m *Mapper) Down(key string) error {
	m.sleep(m.settle)
	err := desktop.Injection("key down", m.input.KeyDown(key))
	m.sleep(m.settle)
	return err
}

// Up releases key.
func (m *Mapper) Up(key string) error {
	m.sleep(m.settle)
	err := desktop.Injection("key up", m.input.KeyUp(key))
	m.sleep(m.settle)
	return err
}

// Hotkey presses keys in order and releases them in reverse order.
func (m *Mapper) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return fmt.Errorf("hotkey: %w: no keys given", desktop.ErrInvalidQuery)
	}
	m.sleep(m.settle)
	var err error
	if m.platform == "darwin" && len(keys) == 2 && (IsModifier(keys[0]) || IsModifier(keys[1])) {
		// The native chord primitive drops modifiers on macOS.
		script := keystrokeScript(keys[0], keys[1])
		m.logger.Debug("hotkey via scripted keystroke", "keys", keys)
		err = desktop.Injection("hotkey", m.script.Run(script))
	} else {
		err = m.chord(keys)
	}
	m.sleep(m.settle)
	return err
}

func (m *Mapper) chord(keys []string) error {
	pressed := make([]string, 0, len(keys))
	var downErr error
	for i, key := range keys {
		if i > 0 {
			m.sleep(m.interval)
		}
		if err := m.input.KeyDown(key); err != nil {
			downErr = desktop.Injection("hotkey key down "+key, err)
			break
		}
		pressed = append(pressed, key)
	}

	// Release whatever went down, even after a failure.
	var upErr error
	for i := len(pressed) - 1; i >= 0; i-- {
		if err := m.input.KeyUp(pressed[i]); err != nil && upErr == nil {
			upErr = desktop.Injection("hotkey key up "+pressed[i], err)
		}
	}
	if downErr != nil {
		return downErr
	}
	return upErr
}

var modifierNames = map[string]string{
	"command": "command",
	"cmd":     "command",
	"option":  "option",
	"alt":     "option",
	"ctrl":    "control",
	"control": "control",
	"shift":   "shift",
}

// IsModifier reports whether key names a modifier.
func IsModifier(key string) bool {
	_, ok := modifierNames[strings.TrimSuffix(strings.ToLower(key), " down")]
	return ok
}

// keystrokeScript builds the System Events command for a key with one
// modifier. The modifier may be given in either position.
func keystrokeScript(a, b string) string {
	keystroke, modifier := a, b
	if IsModifier(a) {
		keystroke, modifier = b, a
	}

	modifier = strings.TrimSuffix(strings.ToLower(modifier), " down")
	modifier = modifierNames[modifier] + " down"

	switch strings.ToLower(keystroke) {
	case "space":
		keystroke = " "
	case "enter":
		keystroke = "\n"
	}
	keystroke = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(keystroke)

	return fmt.Sprintf("tell application \"System Events\"\n\tkeystroke \"%s\" using %s\nend tell", keystroke, modifier)
}
