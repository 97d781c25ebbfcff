package ollama

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

// flexNumber accepts a JSON number, a quoted number, or null. Models quote
// numeric fields often enough that rejecting them would throw away whole
// chunks.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexNumber(v)
	return nil
}

type rawQuestion struct {
	QuestionNum     json.RawMessage `json:"questionNum"`
	Title           string          `json:"title"`
	Content         string          `json:"content"`
	Answer          string          `json:"answer"`
	AnswerType      string          `json:"answerType"`
	AcceptedAnswers []string        `json:"acceptedAnswers"`
	Hints           []string        `json:"hints"`
	Solution        string          `json:"solution"`
	Heuristic       string          `json:"heuristic"`
	Topic           string          `json:"topic"`
	Tier            flexNumber      `json:"tier"`
	Confidence      flexNumber      `json:"confidence"`
	Reasoning       string          `json:"reasoning"`
}

// sanitize maps one raw model question onto the domain type, forcing every
// field into its valid range. Out-of-taxonomy topics become general and
// out-of-range tiers fall back to the paper default.
func (e *Extractor) sanitize(q rawQuestion, meta domain.PaperMeta) domain.CandidateQuestion {
	tier := int(q.Tier)
	if tier < domain.MinTier || tier > domain.MaxTier {
		tier = meta.DefaultTier
		if tier < domain.MinTier || tier > domain.MaxTier {
			tier = domain.DefaultTier
		}
	}

	hints := trimStrings(q.Hints)
	if len(hints) > domain.MaxHints {
		hints = hints[:domain.MaxHints]
	}

	confidence := clamp01(float64(q.Confidence))

	return domain.CandidateQuestion{
		ID:                uuid.NewString(),
		SourceQuestionNum: decodeQuestionNum(q.QuestionNum),
		Topic:             domain.MatchTopic(q.Topic, e.taxonomy),
		Tier:              tier,
		Title:             strings.TrimSpace(q.Title),
		Content:           strings.TrimSpace(q.Content),
		Answer:            strings.TrimSpace(q.Answer),
		AnswerType:        domain.MatchAnswerType(q.AnswerType),
		AcceptedAnswers:   trimStrings(q.AcceptedAnswers),
		Hints:             hints,
		Solution:          strings.TrimSpace(q.Solution),
		Heuristic:         strings.TrimSpace(q.Heuristic),
		Confidence:        confidence,
		NeedsReview:       confidence < e.reviewThreshold,
		Reasoning:         strings.TrimSpace(q.Reasoning),
	}
}

// decodeQuestionNum tolerates both "7" and 7 in the questionNum field.
func decodeQuestionNum(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str)
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return strconv.FormatFloat(num, 'f', -1, 64)
	}
	return ""
}

func trimStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
