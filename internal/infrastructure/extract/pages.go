package extract

import (
	"regexp"
	"strings"
)

// Whole-document extraction loses page boundaries; these heuristics
// reconstruct them well enough for per-page bookkeeping.

// A run of three or more blank lines usually marks a page break.
var pageBreakRe = regexp.MustCompile(`(?:\n[ \t]*){4,}`)

const (
	newlineLookahead  = 200
	sentenceLookahead = 100
)

// splitIntoPages splits whole-document text back into pageCount pages.
// First choice: split on blank-line runs and group the segments evenly. When
// that yields fewer segments than pages, fall back to character-count splits
// that prefer breaking at a newline, then at a sentence boundary.
func splitIntoPages(text string, pageCount int) []string {
	text = strings.TrimSpace(text)
	if pageCount <= 1 || text == "" {
		return []string{text}
	}

	segments := nonEmptySegments(pageBreakRe.Split(text, -1))
	if len(segments) >= pageCount {
		return groupSegments(segments, pageCount)
	}
	return splitByLength(text, pageCount)
}

func nonEmptySegments(raw []string) []string {
	out := raw[:0]
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// groupSegments distributes segments evenly over pageCount pages, earlier
// pages taking the remainder.
func groupSegments(segments []string, pageCount int) []string {
	base := len(segments) / pageCount
	rem := len(segments) % pageCount

	pages := make([]string, 0, pageCount)
	idx := 0
	for p := 0; p < pageCount; p++ {
		take := base
		if p < rem {
			take++
		}
		pages = append(pages, strings.Join(segments[idx:idx+take], "\n\n"))
		idx += take
	}
	return pages
}

func splitByLength(text string, pageCount int) []string {
	target := len(text) / pageCount
	if target < 1 {
		target = 1
	}

	pages := make([]string, 0, pageCount)
	rest := text
	for p := 0; p < pageCount-1 && len(rest) > target; p++ {
		cut := breakPoint(rest, target)
		pages = append(pages, strings.TrimSpace(rest[:cut]))
		rest = rest[cut:]
	}
	pages = append(pages, strings.TrimSpace(rest))
	// Short text yields fewer cuts than pages; pad so len(pages) always
	// matches the declared page count.
	for len(pages) < pageCount {
		pages = append(pages, "")
	}
	return pages
}

// breakPoint looks ahead from the target offset for a newline (up to 200
// chars), then for a sentence end (up to 100 chars), before giving up and
// cutting mid-line.
func breakPoint(text string, target int) int {
	if target >= len(text) {
		return len(text)
	}
	if i := strings.IndexByte(window(text, target, newlineLookahead), '\n'); i >= 0 {
		return target + i + 1
	}
	if i := strings.IndexAny(window(text, target, sentenceLookahead), ".?!"); i >= 0 {
		return target + i + 1
	}
	return target
}

func window(text string, start, width int) string {
	end := start + width
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
