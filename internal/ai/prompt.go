package ai

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/v0xg/deskpilot/internal/desktop"
)

const systemPrompt = `You are a screen element locator. You receive a screenshot of a desktop or application window and a query.

If the query is wrapped in double quotes, find every place where that literal text is visible.
Otherwise the query describes an icon or visual element; find every element matching the description.

Output a JSON array with one object per match, in reading order (top to bottom, left to right):
- "x": horizontal center of the match as a fraction of the screenshot width, between 0 and 1
- "y": vertical center of the match as a fraction of the screenshot height, between 0 and 1
- "similarity": 1 for an exact match, lower for approximate matches, between 0 and 1
- "text": the text you actually see at that location (empty for icons without a label)

If nothing matches, return an empty array: []

Respond ONLY with the JSON array, no explanation or markdown.`

func buildUserPrompt(query string) string {
	return "Query: " + query
}

// parseCandidates extracts a JSON array of candidates from a response that
// may contain surrounding text. Entries with coordinates outside [0,1] are
// dropped; order is preserved.
func parseCandidates(response string) ([]desktop.MatchCandidate, error) {
	arr, err := extractJSONArray(response)
	if err != nil {
		return nil, err
	}

	var candidates []desktop.MatchCandidate
	gjson.Parse(arr).ForEach(func(_, v gjson.Result) bool {
		x, y := v.Get("x"), v.Get("y")
		if !x.Exists() || !y.Exists() {
			return true
		}
		c := desktop.MatchCandidate{
			Point:      desktop.ScreenPoint{X: x.Float(), Y: y.Float()},
			Similarity: 1,
			Text:       v.Get("text").String(),
		}
		if s := v.Get("similarity"); s.Exists() {
			c.Similarity = clamp01(s.Float())
		}
		if !c.Point.InBounds() {
			return true
		}
		candidates = append(candidates, c)
		return true
	})
	return candidates, nil
}

func extractJSONArray(response string) (string, error) {
	trimmed := strings.TrimSpace(response)
	if gjson.Valid(trimmed) && gjson.Parse(trimmed).IsArray() {
		return trimmed, nil
	}

	// Find JSON array in response (look for [ ... ])
	start := strings.Index(response, "[")
	if start == -1 {
		return "", fmt.Errorf("no JSON array found in response")
	}

	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				arr := response[start : i+1]
				if !gjson.Valid(arr) {
					return "", fmt.Errorf("malformed JSON array in response")
				}
				return arr, nil
			}
		}
	}
	return "", fmt.Errorf("no matching closing bracket found")
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
