// Package desktoptest provides recording fakes of the desktop collaborators
// for use in tests.
package desktoptest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/v0xg/deskpilot/internal/desktop"
)

// Input records every primitive call as a short string, e.g. "down ctrl",
// "move 50,0" or "click left x2".
type Input struct {
	Calls []string
	// Path holds every position passed to MoveTo.
	Path []Vec
	X, Y float64
	// FailOn makes any call whose record starts with the prefix fail.
	FailOn string
}

// Vec is a recorded pointer position.
type Vec struct{ X, Y float64 }

var errInjected = errors.New("injected failure")

func (f *Input) record(call string) error {
	f.Calls = append(f.Calls, call)
	if f.FailOn != "" && strings.HasPrefix(call, f.FailOn) {
		return errInjected
	}
	return nil
}

func (f *Input) KeyDown(key string) error { return f.record("down " + key) }
func (f *Input) KeyUp(key string) error   { return f.record("up " + key) }

func (f *Input) Press(keys []string, presses int, _ time.Duration) error {
	call := "press " + strings.Join(keys, "+")
	if presses > 1 {
		call += fmt.Sprintf(" x%d", presses)
	}
	return f.record(call)
}

func (f *Input) MoveTo(x, y float64) error {
	if err := f.record(fmt.Sprintf("move %g,%g", x, y)); err != nil {
		return err
	}
	f.Path = append(f.Path, Vec{X: x, Y: y})
	f.X, f.Y = x, y
	return nil
}

func (f *Input) Click(button string, count int, _ time.Duration) error {
	return f.record(fmt.Sprintf("click %s x%d", button, count))
}

func (f *Input) MouseDown(button string) error { return f.record("mousedown " + button) }
func (f *Input) MouseUp(button string) error   { return f.record("mouseup " + button) }
func (f *Input) Scroll(amount int) error       { return f.record(fmt.Sprintf("scroll %d", amount)) }

func (f *Input) Position() (float64, float64, error) {
	return f.X, f.Y, nil
}

// Moves returns only the recorded move calls.
func (f *Input) Moves() []string {
	var out []string
	for _, c := range f.Calls {
		if strings.HasPrefix(c, "move ") {
			out = append(out, c)
		}
	}
	return out
}

// Clipboard is an in-memory clipboard. Pasted accumulates every payload that
// was pasted.
type Clipboard struct {
	Content string
	Pasted  []string
	Copies  int

	ViewErr error
	// CopyErrAfter fails every Copy after that many successful ones when > 0.
	CopyErrAfter int
	// PasteErrAt fails the paste with this 1-based index when > 0.
	PasteErrAt int
}

func (c *Clipboard) View() (string, error) {
	if c.ViewErr != nil {
		return "", c.ViewErr
	}
	return c.Content, nil
}

func (c *Clipboard) Copy(content string) error {
	if c.CopyErrAfter > 0 && c.Copies >= c.CopyErrAfter {
		return errors.New("clipboard locked")
	}
	c.Copies++
	c.Content = content
	return nil
}

func (c *Clipboard) Paste() error {
	if c.PasteErrAt > 0 && len(c.Pasted)+1 == c.PasteErrAt {
		return errors.New("paste rejected")
	}
	c.Pasted = append(c.Pasted, c.Content)
	return nil
}

// Display returns scripted candidates per query and records every query it
// was asked for.
type Display struct {
	Width, Height int
	Results       map[string][]desktop.MatchCandidate
	Queries       []string
	Shots         int
	FindErr       error
}

func (d *Display) Screenshot(context.Context) (image.Image, error) {
	d.Shots++
	return image.NewRGBA(image.Rect(0, 0, d.Width/4, d.Height/4)), nil
}

func (d *Display) Size(context.Context) (int, int, error) {
	return d.Width, d.Height, nil
}

func (d *Display) Find(_ context.Context, query string, _ image.Image) ([]desktop.MatchCandidate, error) {
	d.Queries = append(d.Queries, query)
	if d.FindErr != nil {
		return nil, d.FindErr
	}
	return d.Results[query], nil
}

// NoSleep records requested sleeps without waiting.
type NoSleep struct {
	Slept []time.Duration
}

func (s *NoSleep) Sleep(d time.Duration) { s.Slept = append(s.Slept, d) }
