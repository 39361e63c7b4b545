package research

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a social media strategist who tracks what is trending right now.
Reply with a JSON array only, no prose and no code fences.
Each element must be an object with the string fields "title", "summary" and "category".
Use short category names such as "Educational", "Entertainment", "Behind The Scenes", "Promotional" or "Community".`

const researchPrompt = `Research %d current trends for the following brand.

Brand context: %s
Niche: %s
Content type: %s

Return exactly %d trends as a JSON array.`

func buildPrompt(req Request) string {
	return fmt.Sprintf(researchPrompt,
		req.Count,
		orUnspecified(req.BrandContext),
		req.Niche,
		orUnspecified(req.ContentType),
		req.Count,
	)
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unspecified"
	}
	return s
}
