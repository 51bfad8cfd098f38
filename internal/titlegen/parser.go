package titlegen

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GeneratedTitle is one entry of the model's structured reply.
type GeneratedTitle struct {
	Original  string `json:"original"`
	Improved  string `json:"improved"`
	Rationale string `json:"rationale"`
}

type titlesResponse struct {
	Titles []GeneratedTitle `json:"titles"`
}

// parseResponse decodes the model reply and enforces the response contract:
// valid JSON, exactly one entry per requested title, no empty improvements.
// A count mismatch is rejected rather than truncated or zipped short.
func parseResponse(raw string, want int) ([]GeneratedTitle, error) {
	cleaned := stripJSONFence(raw)

	var resp titlesResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("model response is not valid JSON: %w", err)
	}

	if len(resp.Titles) != want {
		return nil, fmt.Errorf("model returned %d titles, expected %d", len(resp.Titles), want)
	}

	for i, title := range resp.Titles {
		if strings.TrimSpace(title.Improved) == "" {
			return nil, fmt.Errorf("model returned an empty improved title at index %d", i)
		}
	}
	return resp.Titles, nil
}

// stripJSONFence removes a ```json ... ``` wrapping that some models add
// around their output despite instructions.
func stripJSONFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return trimmed
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
