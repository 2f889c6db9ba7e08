// Package desktop defines the collaborators the automation core drives:
// the OS input primitives, the clipboard, and the display with its visual
// search engine. Concrete backends live in internal/browser and
// internal/clipboard; tests provide their own fakes.
package desktop

import (
	"context"
	"image"
	"time"
)

// Mouse buttons understood by Input.Click, Input.MouseDown and Input.MouseUp.
const (
	ButtonLeft   = "left"
	ButtonRight  = "right"
	ButtonMiddle = "middle"
)

// Input is the OS input-injection primitive.
type Input interface {
	KeyDown(key string) error
	KeyUp(key string) error
	// Press taps each key in keys once, repeated presses times, waiting
	// interval between taps.
	Press(keys []string, presses int, interval time.Duration) error
	MoveTo(x, y float64) error
	Click(button string, count int, interval time.Duration) error
	MouseDown(button string) error
	MouseUp(button string) error
	Scroll(amount int) error
	Position() (x, y float64, err error)
}

// Clipboard is the host clipboard. Paste triggers an actual paste action in
// the focused application.
type Clipboard interface {
	View() (string, error)
	Copy(content string) error
	Paste() error
}

// Screen captures the visible display and reports its current geometry.
type Screen interface {
	Screenshot(ctx context.Context) (image.Image, error)
	Size(ctx context.Context) (width, height int, err error)
}

// Finder localizes text or icons in a screenshot. A query wrapped in double
// quotes asks for literal text; anything else is an icon description.
// Candidates are returned in the engine's own order.
type Finder interface {
	Find(ctx context.Context, query string, shot image.Image) ([]MatchCandidate, error)
}

// Display is a Screen paired with a Finder.
type Display interface {
	Screen
	Finder
}

type display struct {
	Screen
	Finder
}

// NewDisplay pairs a screen with the visual search engine used on its
// screenshots.
func NewDisplay(screen Screen, finder Finder) Display {
	return display{Screen: screen, Finder: finder}
}

// ScreenPoint is a coordinate normalized to [0,1]x[0,1] relative to the
// visible display.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Abs converts the normalized point to absolute pixels for a display of the
// given size. Always pass the geometry observed at resolution time.
func (p ScreenPoint) Abs(width, height int) Point {
	return Point{X: int(p.X * float64(width)), Y: int(p.Y * float64(height))}
}

// InBounds reports whether p lies on the display.
func (p ScreenPoint) InBounds() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// Point is an absolute pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MatchCandidate is one location returned by a visual search.
type MatchCandidate struct {
	Point      ScreenPoint `json:"point"`
	Similarity float64     `json:"similarity"` // 1.0 means exact
	Text       string      `json:"text,omitempty"`
}
