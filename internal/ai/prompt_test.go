package ai

import (
	"reflect"
	"testing"

	"github.com/v0xg/deskpilot/internal/desktop"
)

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expect   []desktop.MatchCandidate
		wantErr  bool
	}{
		{
			name:     "bare array",
			response: `[{"x":0.5,"y":0.25,"similarity":1,"text":"Save"}]`,
			expect:   []desktop.MatchCandidate{{Point: desktop.ScreenPoint{X: 0.5, Y: 0.25}, Similarity: 1, Text: "Save"}},
		},
		{
			name:     "surrounded by prose",
			response: "Here you go:\n```json\n[{\"x\":0.1,\"y\":0.2,\"similarity\":0.6,\"text\":\"Sav\"},{\"x\":0.9,\"y\":0.8,\"similarity\":1,\"text\":\"Save\"}]\n```",
			expect: []desktop.MatchCandidate{
				{Point: desktop.ScreenPoint{X: 0.1, Y: 0.2}, Similarity: 0.6, Text: "Sav"},
				{Point: desktop.ScreenPoint{X: 0.9, Y: 0.8}, Similarity: 1, Text: "Save"},
			},
		},
		{
			name:     "numbers as strings and missing similarity",
			response: `[{"x":"0.5","y":"0.5"}]`,
			expect:   []desktop.MatchCandidate{{Point: desktop.ScreenPoint{X: 0.5, Y: 0.5}, Similarity: 1}},
		},
		{
			name:     "out of range dropped",
			response: `[{"x":1.5,"y":0.5},{"x":0.2,"y":0.3,"similarity":2}]`,
			expect:   []desktop.MatchCandidate{{Point: desktop.ScreenPoint{X: 0.2, Y: 0.3}, Similarity: 1}},
		},
		{
			name:     "empty",
			response: `[]`,
		},
		{
			name:     "no array",
			response: "I could not find it.",
			wantErr:  true,
		},
		{
			name:     "unterminated",
			response: `[{"x":0.1`,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCandidates(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.expect) {
				t.Errorf("got %+v, want %+v", got, tt.expect)
			}
		})
	}
}

func TestNewFinderUnknownProvider(t *testing.T) {
	if _, err := NewFinder("llama", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewFinderRequiresKey(t *testing.T) {
	t.Setenv("DESKPILOT_ANTHROPIC_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewFinder("claude", Options{}); err == nil {
		t.Error("expected error without API key")
	}
	t.Setenv("OPENAI_API_KEY", "test-key")
	f, err := NewFinder("openai", Options{})
	if err != nil || f == nil {
		t.Errorf("expected OpenAI finder with key set, got %v", err)
	}
}
