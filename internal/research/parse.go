package research

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cyderes/trending-topics-service/internal/models"
)

var errNoTrends = errors.New("no usable trends in response")

// rawTrend accepts the field spellings models tend to produce
type rawTrend struct {
	Title       string `json:"title"`
	Name        string `json:"name"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// parseTrends extracts candidates from a provider reply. The reply may be a
// bare JSON array, an object with a "trends" array, or either wrapped in
// prose or a code fence. Entries without a title or category are dropped;
// an empty result is an error.
func parseTrends(response string, limit int) ([]models.CandidateTrend, error) {
	raw, err := decodeTrends(response)
	if err != nil {
		return nil, err
	}

	out := make([]models.CandidateTrend, 0, min(len(raw), limit))
	for _, r := range raw {
		if len(out) == limit {
			break
		}

		title := strings.TrimSpace(firstNonEmpty(r.Title, r.Name))
		category := strings.TrimSpace(r.Category)
		if title == "" || category == "" {
			continue
		}

		out = append(out, models.CandidateTrend{
			Title:    title,
			Summary:  strings.TrimSpace(firstNonEmpty(r.Summary, r.Description)),
			Category: category,
			Source:   models.SourceLLM,
		})
	}

	if len(out) == 0 {
		return nil, errNoTrends
	}
	return out, nil
}

func decodeTrends(response string) ([]rawTrend, error) {
	text := strings.TrimSpace(response)

	// An object that opens before any array may be a {"trends": [...]} wrapper.
	objAt, arrAt := strings.IndexByte(text, '{'), strings.IndexByte(text, '[')
	if objAt != -1 && (arrAt == -1 || objAt < arrAt) {
		if obj, ok := extractBalanced(text, '{', '}'); ok {
			var wrapped struct {
				Trends []json.RawMessage `json:"trends"`
			}
			if err := json.Unmarshal([]byte(obj), &wrapped); err == nil && wrapped.Trends != nil {
				return decodeEntries(wrapped.Trends), nil
			}
		}
	}

	arr, ok := extractBalanced(text, '[', ']')
	if !ok {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(arr), &entries); err != nil {
		return nil, fmt.Errorf("parse trends array: %w", err)
	}
	return decodeEntries(entries), nil
}

// decodeEntries decodes each element on its own so one malformed entry
// does not discard the rest
func decodeEntries(entries []json.RawMessage) []rawTrend {
	out := make([]rawTrend, 0, len(entries))
	for _, e := range entries {
		var r rawTrend
		if err := json.Unmarshal(e, &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

// extractBalanced returns the first balanced open..close span of s,
// skipping brackets inside JSON strings.
func extractBalanced(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
