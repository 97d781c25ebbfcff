package domain

import (
	"strings"
	"time"
)

type AnswerType string

const (
	AnswerExact          AnswerType = "exact"
	AnswerNumeric        AnswerType = "numeric"
	AnswerMultipleChoice AnswerType = "multiple-choice"
)

// MatchAnswerType maps a model-supplied answer type onto the closed enum,
// defaulting to exact.
func MatchAnswerType(s string) AnswerType {
	switch strings.ReplaceAll(normalizeToken(s), "_", "-") {
	case string(AnswerNumeric):
		return AnswerNumeric
	case string(AnswerMultipleChoice):
		return AnswerMultipleChoice
	default:
		return AnswerExact
	}
}

const (
	MinTier     = 1
	MaxTier     = 5
	DefaultTier = 2
)

const MaxHints = 3

// Candidates scoring below this confidence open in the review queue as
// needs_edit instead of pending.
const DefaultReviewThreshold = 0.7

// CandidateQuestion is one unvalidated, AI-proposed question extracted from a
// chunk. The extraction client is the schema boundary: every field here has
// already been validated against the closed taxonomy and value ranges.
type CandidateQuestion struct {
	ID                string     `json:"id"`
	SourceQuestionNum string     `json:"source_question_num,omitempty"`
	Topic             Topic      `json:"topic"`
	Tier              int        `json:"tier"`
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	Answer            string     `json:"answer"`
	AnswerType        AnswerType `json:"answer_type"`
	AcceptedAnswers   []string   `json:"accepted_answers,omitempty"`
	Hints             []string   `json:"hints,omitempty"`
	Solution          string     `json:"solution,omitempty"`
	Heuristic         string     `json:"heuristic,omitempty"`
	Confidence        float64    `json:"confidence"`
	NeedsReview       bool       `json:"needs_review"`
	Reasoning         string     `json:"reasoning,omitempty"`
}

// ChunkExtraction is what one extraction-service call yields for one chunk.
type ChunkExtraction struct {
	Questions  []CandidateQuestion
	PaperType  string
	GradeLevel string
}

type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewNeedsEdit ReviewStatus = "needs_edit"
	ReviewApproved  ReviewStatus = "approved"
	ReviewRejected  ReviewStatus = "rejected"
)

// StagedQuestion is a candidate plus review-workflow state. The pipeline only
// ever creates these; the review workflow owns every later mutation.
type StagedQuestion struct {
	ID                string            `json:"id"`
	SourceFile        string            `json:"source_file"`
	SourceQuestionNum string            `json:"source_question_num,omitempty"`
	Candidate         CandidateQuestion `json:"candidate"`
	Status            ReviewStatus      `json:"status"`
	FinalTopic        *Topic            `json:"final_topic,omitempty"`
	FinalTier         *int              `json:"final_tier,omitempty"`
	QuestionID        *string           `json:"question_id,omitempty"`
	ReviewedAt        *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// NewStagedQuestion routes a candidate into the review queue: low-confidence
// candidates open as needs_edit, the rest as pending.
func NewStagedQuestion(sourceFile string, c CandidateQuestion, now time.Time) StagedQuestion {
	status := ReviewPending
	if c.NeedsReview {
		status = ReviewNeedsEdit
	}
	return StagedQuestion{
		ID:                c.ID,
		SourceFile:        sourceFile,
		SourceQuestionNum: c.SourceQuestionNum,
		Candidate:         c,
		Status:            status,
		CreatedAt:         now,
	}
}
