package domain

import (
	"testing"
	"time"
)

func TestMatchTopic(t *testing.T) {
	allowed := DefaultTaxonomy()

	tests := []struct {
		in   string
		want Topic
	}{
		{"fractions", "fractions"},
		{"Fractions", "fractions"},
		{"  Data Analysis ", "data_analysis"},
		{"data-analysis", "data_analysis"},
		{"trigonometry", TopicGeneral},
		{"", TopicGeneral},
	}
	for _, tt := range tests {
		if got := MatchTopic(tt.in, allowed); got != tt.want {
			t.Fatalf("MatchTopic(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchAnswerType(t *testing.T) {
	tests := []struct {
		in   string
		want AnswerType
	}{
		{"numeric", AnswerNumeric},
		{"NUMERIC", AnswerNumeric},
		{"multiple-choice", AnswerMultipleChoice},
		{"multiple choice", AnswerMultipleChoice},
		{"multiple_choice", AnswerMultipleChoice},
		{"exact", AnswerExact},
		{"freeform", AnswerExact},
		{"", AnswerExact},
	}
	for _, tt := range tests {
		if got := MatchAnswerType(tt.in); got != tt.want {
			t.Fatalf("MatchAnswerType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewStagedQuestionRouting(t *testing.T) {
	now := time.Now().UTC()

	confident := NewStagedQuestion("p.pdf", CandidateQuestion{ID: "a", Confidence: 0.9}, now)
	if confident.Status != ReviewPending {
		t.Fatalf("status = %s, want pending", confident.Status)
	}

	shaky := NewStagedQuestion("p.pdf", CandidateQuestion{ID: "b", Confidence: 0.4, NeedsReview: true}, now)
	if shaky.Status != ReviewNeedsEdit {
		t.Fatalf("status = %s, want needs_edit", shaky.Status)
	}
	if shaky.SourceFile != "p.pdf" || shaky.CreatedAt != now {
		t.Fatalf("staged fields lost: %+v", shaky)
	}
}
