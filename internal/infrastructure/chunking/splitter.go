// Package chunking slices normalized document text into pieces that fit a
// model context budget, preferring paragraph boundaries and falling back to
// sentence boundaries for oversized paragraphs.
package chunking

import "strings"

const DefaultBudget = 15000

type Splitter struct {
	budget int
}

func New(budget int) *Splitter {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Splitter{budget: budget}
}

// Split returns the text as ordered segments, each within the budget except
// for a single sentence that alone exceeds it, which is emitted whole rather
// than cut mid-question.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.budget {
		return []string{text}
	}

	var pieces []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, current.String())
			current.Reset()
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) > s.budget {
			flush()
			pieces = append(pieces, s.splitSentences(para)...)
			continue
		}
		// +2 for the paragraph separator re-added on join.
		if current.Len() > 0 && current.Len()+2+len(para) > s.budget {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return pieces
}

// splitSentences packs sentences of one oversized paragraph into budget-sized
// pieces. A single sentence longer than the budget is kept intact.
func (s *Splitter) splitSentences(para string) []string {
	var pieces []string
	var current strings.Builder

	for _, sentence := range splitAfterSentenceEnds(para) {
		if current.Len() > 0 && current.Len()+1+len(sentence) > s.budget {
			pieces = append(pieces, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		pieces = append(pieces, strings.TrimSpace(current.String()))
	}
	return pieces
}

// splitAfterSentenceEnds cuts after ".", "!" or "?" followed by whitespace.
// Decimal points and question numbering survive because they are not
// followed by a space.
func splitAfterSentenceEnds(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && (text[i+1] == ' ' || text[i+1] == '\n') {
			sentences = append(sentences, strings.TrimSpace(text[start:i+1]))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
