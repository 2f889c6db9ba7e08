// Package clipboard adapts the host system clipboard. Pasting is done by
// sending the platform's paste hotkey to the focused application.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// Hotkeyer sends a key chord.
type Hotkeyer interface {
	Hotkey(keys ...string) error
	Platform() string
}

// System is the host clipboard.
type System struct {
	keys  Hotkeyer
	read  func() (string, error)
	write func(string) error
}

// NewSystem returns the host clipboard, pasting through keys.
func NewSystem(keys Hotkeyer) (*System, error) {
	if keys == nil {
		return nil, errors.New("clipboard: hotkey sender is required")
	}
	if clipboard.Unsupported {
		return nil, errors.New("clipboard: no clipboard utility found (install xclip, xsel or wl-clipboard)")
	}
	return &System{keys: keys, read: clipboard.ReadAll, write: clipboard.WriteAll}, nil
}

func (s *System) View() (string, error) {
	return s.read()
}

func (s *System) Copy(content string) error {
	return s.write(content)
}

// Paste sends command+v on macOS and ctrl+v elsewhere.
func (s *System) Paste() error {
	return s.keys.Hotkey(PasteChord(s.keys.Platform())...)
}

// PasteChord returns the paste hotkey for platform.
func PasteChord(platform string) []string {
	if platform == "darwin" {
		return []string{"command", "v"}
	}
	return []string{"ctrl", "v"}
}
