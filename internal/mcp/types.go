package mcp

import (
	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/resolver"
)

// TypeTextInput is the input for the type_text tool.
type TypeTextInput struct {
	Text     string `json:"text" jsonschema:"Text to type into the focused application. A trailing newline presses Enter."`
	Interval int    `json:"interval_ms,omitempty" jsonschema:"When set, type character by character with this many milliseconds between characters instead of pasting."`
}

// PressKeysInput is the input for the press_keys tool.
type PressKeysInput struct {
	Keys     []string `json:"keys" jsonschema:"Keys to tap in order, e.g. [\"enter\"] or [\"down\", \"down\"]."`
	Presses  int      `json:"presses,omitempty" jsonschema:"How many times to repeat the sequence (default: 1)."`
	Interval int      `json:"interval_ms,omitempty" jsonschema:"Milliseconds between taps (default: 100)."`
}

// HotkeyInput is the input for the hotkey tool.
type HotkeyInput struct {
	Keys []string `json:"keys" jsonschema:"Keys held together and released in reverse order, e.g. [\"ctrl\", \"c\"]."`
}

// MoveInput is the input for the move_mouse tool. Give one of text, icon,
// or both x and y.
type MoveInput struct {
	Text string `json:"text,omitempty" jsonschema:"Visible text to find on screen. Preferred over coordinates."`
	Icon string `json:"icon,omitempty" jsonschema:"Description of an icon or visual element to find on screen."`
	X    *int   `json:"x,omitempty" jsonschema:"Absolute x coordinate in pixels. Only use coordinates returned by a previous call."`
	Y    *int   `json:"y,omitempty" jsonschema:"Absolute y coordinate in pixels. Only use coordinates returned by a previous call."`
}

func (in MoveInput) selector() resolver.Selector {
	return resolver.Selector{X: in.X, Y: in.Y, Text: in.Text, Icon: in.Icon}
}

// ClickInput is the input for the click tool. Without a target it clicks at
// the current pointer position.
type ClickInput struct {
	Text   string `json:"text,omitempty" jsonschema:"Visible text to find on screen. Preferred over coordinates."`
	Icon   string `json:"icon,omitempty" jsonschema:"Description of an icon or visual element to find on screen."`
	X      *int   `json:"x,omitempty" jsonschema:"Absolute x coordinate in pixels. Only use coordinates returned by a previous call."`
	Y      *int   `json:"y,omitempty" jsonschema:"Absolute y coordinate in pixels. Only use coordinates returned by a previous call."`
	Button string `json:"button,omitempty" jsonschema:"left, right or middle (default: left)."`
	Clicks int    `json:"clicks,omitempty" jsonschema:"Number of clicks: 2 for a double click, 3 for a triple click (default: 1)."`
}

func (in ClickInput) selector() resolver.Selector {
	return resolver.Selector{X: in.X, Y: in.Y, Text: in.Text, Icon: in.Icon}
}

// ScrollInput is the input for the scroll tool.
type ScrollInput struct {
	Clicks int `json:"clicks" jsonschema:"Wheel clicks to scroll; positive scrolls up, negative scrolls down."`
}

// PositionInput is the input for the mouse_position tool.
type PositionInput struct{}

// PointerOutput reports where the pointer acted, or why it could not.
type PointerOutput struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Kind string `json:"kind,omitempty"`
	// Candidates lists every match of an ambiguous target, in the order the
	// display reported them.
	Candidates []desktop.IndexedCandidate `json:"candidates,omitempty"`
}

// DoneOutput is the output of keyboard tools.
type DoneOutput struct {
	OK bool `json:"ok"`
}
