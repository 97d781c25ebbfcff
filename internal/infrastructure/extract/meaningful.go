package extract

import (
	"regexp"
	"strings"
)

// A scanned-image PDF still yields a trickle of text: URLs stamped by the
// scanner, sharing-site watermarks, page numbers. Those are stripped before
// judging whether native extraction found real content.
var (
	urlRe       = regexp.MustCompile(`https?://\S+|www\.\S+`)
	watermarkRe = regexp.MustCompile(`(?i)free\s*test\s*paper|test\s*papers?\s*free|sg\s*exam\s*papers?|all\s+rights\s+reserved`)
	digitLineRe = regexp.MustCompile(`(?m)^\s*\d+\s*$`)
	spaceRunRe  = regexp.MustCompile(`\s+`)
)

// meaningfulLength is the character count of the text once boilerplate is
// removed and whitespace collapsed.
func meaningfulLength(text string) int {
	s := urlRe.ReplaceAllString(text, " ")
	s = watermarkRe.ReplaceAllString(s, " ")
	s = digitLineRe.ReplaceAllString(s, " ")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return len(strings.TrimSpace(s))
}
