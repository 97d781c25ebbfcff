package usecase

import (
	"testing"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

func TestDedupeExactNormalizedMatch(t *testing.T) {
	candidates := []domain.CandidateQuestion{
		{ID: "a", Content: "Find 3/4 of 120.", Answer: "90"},
		{ID: "b", Content: "find  3/4 OF 120", Answer: " 90 "},
		{ID: "c", Content: "Find 3/4 of 121.", Answer: "90.75"},
	}

	got := Dedupe(candidates)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("wrong survivors: %q, %q", got[0].ID, got[1].ID)
	}
}

func TestDedupeKeepsSimilarButDistinctQuestions(t *testing.T) {
	candidates := []domain.CandidateQuestion{
		{ID: "a", Content: "A tank holds 45 litres.", Answer: "45"},
		{ID: "b", Content: "A tank holds 46 litres.", Answer: "46"},
		{ID: "c", Content: "A tank holds 45 litres.", Answer: "46"},
	}

	got := Dedupe(candidates)
	if len(got) != 3 {
		t.Fatalf("distinct questions were merged: got %d, want 3", len(got))
	}
}

func TestDedupeFirstOccurrenceWins(t *testing.T) {
	candidates := []domain.CandidateQuestion{
		{ID: "first", Content: "Same question?", Answer: "yes", Confidence: 0.5},
		{ID: "second", Content: "same question", Answer: "yes!", Confidence: 0.99},
	}

	got := Dedupe(candidates)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].ID != "first" {
		t.Fatalf("expected first occurrence to win, got %q", got[0].ID)
	}
}

func TestDedupeSmallInputs(t *testing.T) {
	if got := Dedupe(nil); got != nil {
		t.Fatalf("nil input should stay nil")
	}
	one := []domain.CandidateQuestion{{ID: "a"}}
	if got := Dedupe(one); len(got) != 1 {
		t.Fatalf("single candidate must survive")
	}
}
