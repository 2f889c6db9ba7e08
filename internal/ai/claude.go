package ai

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/snapshot"
)

// ClaudeFinder implements desktop.Finder using Anthropic's Claude
type ClaudeFinder struct {
	client   *anthropic.Client
	model    string
	maxWidth uint
}

// NewClaudeFinder creates a new Claude finder
func NewClaudeFinder(opts Options) (*ClaudeFinder, error) {
	apiKey := os.Getenv("DESKPILOT_ANTHROPIC_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("DESKPILOT_ANTHROPIC_KEY or ANTHROPIC_API_KEY environment variable required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}

	return &ClaudeFinder{
		client:   &client,
		model:    model,
		maxWidth: opts.MaxWidth,
	}, nil
}

// Find asks Claude where query appears in shot.
func (f *ClaudeFinder) Find(ctx context.Context, query string, shot image.Image) ([]desktop.MatchCandidate, error) {
	encoded, err := snapshot.Base64PNG(snapshot.Downscale(shot, f.maxWidth))
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(f.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64("image/png", encoded),
				anthropic.NewTextBlock(buildUserPrompt(query)),
			),
		},
	})
	if err != nil {
		return nil, desktop.Unavailable("Claude API", err)
	}

	// Extract text content
	var responseText string
	for _, block := range resp.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("empty response from Claude")
	}

	candidates, err := parseCandidates(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Claude response as JSON: %w\nResponse: %s", err, responseText)
	}
	return candidates, nil
}
