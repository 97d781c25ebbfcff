package domain

import "strings"

// Topic is a question's subject area. The taxonomy is a closed set: anything
// the extraction service invents outside it falls back to TopicGeneral.
type Topic string

const TopicGeneral Topic = "general"

// DefaultTaxonomy covers the primary-school math syllabus the question bank
// is organised around, plus the general fallback bucket.
func DefaultTaxonomy() []Topic {
	return []Topic{
		"whole_numbers",
		"fractions",
		"decimals",
		"percentage",
		"ratio",
		"algebra",
		"geometry",
		"measurement",
		"speed",
		"data_analysis",
		TopicGeneral,
	}
}

// MatchTopic maps a model-supplied topic onto the allowed set, tolerating
// case, spaces, and hyphens. Unknown topics become TopicGeneral.
func MatchTopic(s string, allowed []Topic) Topic {
	needle := normalizeToken(s)
	for _, t := range allowed {
		if normalizeToken(string(t)) == needle {
			return t
		}
	}
	return TopicGeneral
}

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
