// Package ai locates text and icons in screenshots with vision models.
package ai

import (
	"fmt"

	"github.com/v0xg/deskpilot/internal/desktop"
)

// Options configures a vision finder.
type Options struct {
	Model string
	// MaxWidth bounds the screenshot sent to the model.
	MaxWidth uint
}

// NewFinder creates a vision finder based on the provider name
func NewFinder(name string, opts Options) (desktop.Finder, error) {
	switch name {
	case "claude", "anthropic":
		f, err := NewClaudeFinder(opts)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "openai", "gpt":
		f, err := NewOpenAIFinder(opts)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", name)
	}
}
