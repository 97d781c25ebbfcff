package ollama

import (
	"fmt"
	"strings"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

func buildExtractionPrompt(chunk domain.Chunk, meta domain.PaperMeta, taxonomy []domain.Topic) string {
	topics := make([]string, len(taxonomy))
	for i, t := range taxonomy {
		topics[i] = string(t)
	}

	var b strings.Builder
	b.WriteString(`You are an exam question extractor for Singapore primary school mathematics papers.
Extract EVERY question from the text below. Return strict JSON only, no markdown, matching this shape:

{
  "questions": [
    {
      "questionNum": "original question number as printed, e.g. \"7\" or \"12(b)\", or \"\" if absent",
      "title": "short descriptive title",
      "content": "full question text, self-contained",
      "answer": "the answer",
      "answerType": "exact | numeric | multiple-choice",
      "acceptedAnswers": ["equivalent correct answers"],
      "hints": ["up to 3 progressive hints"],
      "solution": "worked solution",
      "heuristic": "problem-solving heuristic used, e.g. model drawing, working backwards",
      "topic": "one of the allowed topics",
      "tier": 1,
      "confidence": 0.0,
      "reasoning": "one sentence on why this topic and tier"
    }
  ],
  "paperType": "e.g. SA2, Prelim, CA1, or \"\"",
  "gradeLevel": "e.g. P5, P6, or \"\""
}

Allowed topics: `)
	b.WriteString(strings.Join(topics, ", "))
	b.WriteString(`

Tier is difficulty from 1 (routine one-step) to 5 (challenging multi-step problem solving).
Confidence is your certainty from 0 to 1 that the question was extracted completely and correctly.
Skip instructions, formula sheets, and blank answer spaces. If the text contains no questions, return {"questions": []}.
`)

	if meta.Source != "" || meta.Year != 0 {
		b.WriteString("\nPaper: ")
		if meta.Source != "" {
			b.WriteString(meta.Source)
		}
		if meta.Year != 0 {
			fmt.Fprintf(&b, " %d", meta.Year)
		}
		b.WriteString("\n")
	}
	if chunk.Total > 1 {
		fmt.Fprintf(&b, "\nThis is part %d of %d of the paper; questions may continue in other parts. Extract only complete questions visible here.\n", chunk.Index, chunk.Total)
	}

	b.WriteString("\nText:\n")
	b.WriteString(chunk.Text)
	return b.String()
}
