package usecase

import (
	"strings"
	"unicode"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

// Dedupe drops candidates whose normalized content+answer already appeared.
// Chunk boundaries can fall mid-question, so overlapping chunks sometimes
// reconstruct the same question twice; an exact normalized match is
// deliberately conservative so genuinely distinct questions that merely
// resemble each other both survive. Order is stable, first occurrence wins.
func Dedupe(candidates []domain.CandidateQuestion) []domain.CandidateQuestion {
	if len(candidates) < 2 {
		return candidates
	}
	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		key := dedupeKey(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// dedupeKey lower-cases, strips punctuation, and collapses whitespace over
// the concatenation of content and answer.
func dedupeKey(c domain.CandidateQuestion) string {
	var b strings.Builder
	b.Grow(len(c.Content) + len(c.Answer) + 1)
	pendingSpace := false
	writeRunes := func(s string) {
		for _, r := range s {
			switch {
			case unicode.IsSpace(r):
				pendingSpace = b.Len() > 0
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				if pendingSpace {
					b.WriteByte(' ')
					pendingSpace = false
				}
				b.WriteRune(unicode.ToLower(r))
			default:
				// punctuation stripped
			}
		}
	}
	writeRunes(c.Content)
	pendingSpace = b.Len() > 0
	writeRunes(c.Answer)
	return b.String()
}
