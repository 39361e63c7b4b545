package research

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cyderes/trending-topics-service/internal/models"
)

type fallbackTemplate struct {
	title    string
	summary  string
	category string
}

// fallbackTemplates are evergreen ideas used when the provider is unavailable.
// %s is replaced with the niche.
var fallbackTemplates = []fallbackTemplate{
	{"Beginner tips for %s", "Quick, practical advice that helps newcomers get started in %s.", "Educational"},
	{"Behind the scenes of %s", "Show the people and process behind your %s work.", "Behind The Scenes"},
	{"Common %s myths debunked", "Address misconceptions your audience has about %s.", "Educational"},
	{"%s trends to watch this season", "Round up what is changing in %s and what it means for your audience.", "Industry News"},
	{"Community spotlight in %s", "Feature customers or creators doing interesting things in %s.", "Community"},
	{"Day-in-the-life %s content", "A relatable look at an ordinary day working in %s.", "Entertainment"},
	{"Before and after: %s results", "Show a concrete transformation achieved with %s.", "Promotional"},
	{"Ask me anything about %s", "Invite questions and answer the most common ones about %s.", "Community"},
}

// fallbackTrends returns up to count deterministic candidates for niche
func fallbackTrends(niche string, count int) []models.CandidateTrend {
	niche = strings.TrimSpace(niche)
	n := min(count, len(fallbackTemplates))

	out := make([]models.CandidateTrend, n)
	for i := 0; i < n; i++ {
		tpl := fallbackTemplates[i]
		out[i] = models.CandidateTrend{
			Title:    capitalize(fmt.Sprintf(tpl.title, niche)),
			Summary:  fmt.Sprintf(tpl.summary, niche),
			Category: tpl.category,
			Source:   models.SourceFallback,
		}
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
