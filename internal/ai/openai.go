package ai

import (
	"context"
	"fmt"
	"image"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/v0xg/deskpilot/internal/desktop"
	"github.com/v0xg/deskpilot/internal/snapshot"
)

// OpenAIFinder implements desktop.Finder using OpenAI
type OpenAIFinder struct {
	client   *openai.Client
	model    string
	maxWidth uint
}

// NewOpenAIFinder creates a new OpenAI finder
func NewOpenAIFinder(opts Options) (*OpenAIFinder, error) {
	apiKey := os.Getenv("DESKPILOT_OPENAI_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("DESKPILOT_OPENAI_KEY or OPENAI_API_KEY environment variable required")
	}

	client := openai.NewClient(apiKey)

	model := opts.Model
	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAIFinder{
		client:   client,
		model:    model,
		maxWidth: opts.MaxWidth,
	}, nil
}

// Find asks OpenAI where query appears in shot.
func (f *OpenAIFinder) Find(ctx context.Context, query string, shot image.Image) ([]desktop.MatchCandidate, error) {
	encoded, err := snapshot.Base64PNG(snapshot.Downscale(shot, f.maxWidth))
	if err != nil {
		return nil, err
	}

	resp, err := f.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: f.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type:     openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{URL: "data:image/png;base64," + encoded},
						},
						{
							Type: openai.ChatMessagePartTypeText,
							Text: buildUserPrompt(query),
						},
					},
				},
			},
			MaxTokens: 1024,
		},
	)
	if err != nil {
		return nil, desktop.Unavailable("OpenAI API", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := resp.Choices[0].Message.Content

	candidates, err := parseCandidates(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI response as JSON: %w\nResponse: %s", err, responseText)
	}
	return candidates, nil
}
