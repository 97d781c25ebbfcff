// Package textnorm cleans extracted text before chunking. Normalization is
// idempotent: running it twice produces the same output as running it once.
package textnorm

import (
	"regexp"
	"strings"
)

// Typographic substitutions: curly quotes, dashes, ellipsis, and the
// ligatures PDF fonts love to emit.
var replacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", "-",
	"…", "...",
	"ﬀ", "ff",
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	" ", " ",
)

var (
	controlRe = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	// OCR misreads the capital I as a pipe at the start of words
	// ("|f the ratio...").
	pipeWordRe      = regexp.MustCompile(`\|([a-z])`)
	lonePipeRe      = regexp.MustCompile(`(^|\s)\|(\s|$)`)
	ellipsisRunRe   = regexp.MustCompile(`\.{3,}`)
	intraSpaceRe    = regexp.MustCompile(`[ \t]{2,}`)
	trailingSpaceRe = regexp.MustCompile(`(?m)[ \t]+$`)
	blankLineRunRe  = regexp.MustCompile(`\n{3,}`)
)

type Normalizer struct{}

func New() *Normalizer { return &Normalizer{} }

func (n *Normalizer) Normalize(text string) string {
	s := strings.ReplaceAll(text, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = controlRe.ReplaceAllString(s, "")
	s = replacer.Replace(s)
	s = pipeWordRe.ReplaceAllString(s, "I$1")
	s = lonePipeRe.ReplaceAllString(s, "${1}I${2}")
	s = ellipsisRunRe.ReplaceAllString(s, "...")
	s = intraSpaceRe.ReplaceAllString(s, " ")
	s = trailingSpaceRe.ReplaceAllString(s, "")
	s = blankLineRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
