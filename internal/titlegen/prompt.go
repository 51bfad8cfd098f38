package titlegen

import (
	"fmt"
	"strings"
)

// buildPrompt assembles the single batched request for all fetched titles.
// The response contract is strict JSON so the parser can reject anything that
// does not align with the request.
func buildPrompt(channelName string, titles []string) string {
	var numbered strings.Builder
	for i, title := range titles {
		fmt.Fprintf(&numbered, "%d. %q\n", i+1, title)
	}

	return fmt.Sprintf(`You are a YouTube title optimization expert. Below are %d video titles from the channel %q.

For each title, provide:
1. An improved version that is more engaging, SEO-friendly, and likely to get more clicks.
2. A brief rationale (1-2 sentences) explaining why the improved title is better.

Guidelines:
- Keep the core topic and authenticity.
- Use action verbs, numbers, and specific value propositions.
- Make it curiosity-inducing without being clickbait.
- Optimize for searchability and clarity.

Video titles:
%s
Respond with JSON only, no surrounding prose, exactly one entry per input title and in the same order:
{
  "titles": [
    {
      "original": "...",
      "improved": "...",
      "rationale": "..."
    }
  ]
}`, len(titles), channelName, numbered.String())
}
