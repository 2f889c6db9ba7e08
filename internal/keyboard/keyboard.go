// Package keyboard synthesizes text entry. Arbitrary Unicode is routed
// through the clipboard and pasted, and the clipboard contents held before
// the call are put back afterwards.
//
// The clipboard is a process-external resource. Callers must serialize
// Write calls; two concurrent writes race on its contents.
package keyboard

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rivo/uniseg"

	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/keys"
)

// DefaultDelay is split evenly before and after a Write.
const DefaultDelay = 300 * time.Millisecond

// pasteLineLimit is the line count from which the body is pasted in one go.
const pasteLineLimit = 5

// Options configures a Keyboard.
type Options struct {
	Delay  time.Duration
	Sleep  func(time.Duration)
	Logger *slog.Logger
}

// WriteOptions tunes a single Write.
type WriteOptions struct {
	// Interval > 0 types each character directly with that pause after it,
	// bypassing the clipboard.
	Interval time.Duration
	// Delay overrides the keyboard's settle delay when non-zero.
	Delay time.Duration
}

// Keyboard types text and forwards key requests to the modifier mapper.
type Keyboard struct {
	*keys.Mapper

	input  desktop.Input
	clip   desktop.Clipboard
	delay  time.Duration
	sleep  func(time.Duration)
	logger *slog.Logger
}

// New creates a Keyboard. The clipboard may be nil, in which case Write only
// supports direct typing.
func New(input desktop.Input, mapper *keys.Mapper, clip desktop.Clipboard, opts Options) (*Keyboard, error) {
	if input == nil || mapper == nil {
		return nil, errors.New("keyboard: input primitive and key mapper are required")
	}
	k := &Keyboard{
		Mapper: mapper,
		input:  input,
		clip:   clip,
		delay:  opts.Delay,
		sleep:  opts.Sleep,
		logger: opts.Logger,
	}
	if k.delay == 0 {
		k.delay = DefaultDelay
	}
	if k.sleep == nil {
		k.sleep = time.Sleep
	}
	if k.logger == nil {
		k.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return k, nil
}

// Write types text into the focused application.
func (k *Keyboard) Write(text string, opts WriteOptions) error {
	delay := opts.Delay
	if delay == 0 {
		delay = k.delay
	}

	k.sleep(delay / 2)
	var err error
	if opts.Interval > 0 {
		err = k.typeDirect(text, opts.Interval)
	} else {
		err = k.paste(text)
	}
	k.sleep(delay / 2)
	return err
}

// typeDirect presses each grapheme cluster in turn.
func (k *Keyboard) typeDirect(text string, interval time.Duration) error {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if err := k.input.Press([]string{g.Str()}, 1, 0); err != nil {
			return desktop.Injection("type character", err)
		}
		k.sleep(interval)
	}
	return nil
}

func (k *Keyboard) paste(text string) error {
	if k.clip == nil {
		return desktop.Unavailable("clipboard", errors.New("no clipboard configured"))
	}

	snap := k.snapshot()
	defer k.restore(snap)

	body, endsInEnter := strings.CutSuffix(text, "\n")
	lines := strings.Split(body, "\n")

	if len(lines) < pasteLineLimit {
		for i, line := range lines {
			if i != len(lines)-1 {
				line += "\n"
			}
			if err := k.pasteChunk(line); err != nil {
				return err
			}
		}
	} else {
		if err := k.pasteChunk(body); err != nil {
			return err
		}
	}

	if endsInEnter {
		return k.Press([]string{"enter"}, 1, keys.DefaultInterval)
	}
	return nil
}

func (k *Keyboard) pasteChunk(chunk string) error {
	if err := k.clip.Copy(chunk); err != nil {
		return desktop.Unavailable("copy to clipboard", err)
	}
	return desktop.Injection("paste", k.clip.Paste())
}

// clipboardSnapshot holds the clipboard contents captured before a paste.
// ok is false when the capture failed and nothing should be restored.
type clipboardSnapshot struct {
	content string
	ok      bool
}

func (k *Keyboard) snapshot() clipboardSnapshot {
	content, err := k.clip.View()
	if err != nil {
		k.logger.Warn("clipboard snapshot failed", "op", "view", "err", err)
		return clipboardSnapshot{}
	}
	return clipboardSnapshot{content: content, ok: true}
}

func (k *Keyboard) restore(snap clipboardSnapshot) {
	if !snap.ok {
		k.logger.Debug("clipboard restore skipped", "op", "copy")
		return
	}
	if err := k.clip.Copy(snap.content); err != nil {
		k.logger.Warn("clipboard restore failed", "op", "copy", "err", err)
	}
}
