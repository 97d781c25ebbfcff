package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

type StagingRepository struct {
	db *sql.DB
}

func NewStagingRepository(db *sql.DB) *StagingRepository {
	return &StagingRepository{db: db}
}

// StageCandidates inserts candidates into the review holding table and
// returns how many rows were actually written. Re-staging the same paper is
// safe: rows colliding on (source_file, source_question_num) are skipped by
// ON CONFLICT DO NOTHING, so a re-run never duplicates reviewed work.
func (r *StagingRepository) StageCandidates(ctx context.Context, sourceFile string, candidates []domain.CandidateQuestion) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin staging tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	inserted := 0
	for _, c := range candidates {
		staged := domain.NewStagedQuestion(sourceFile, c, now)

		acceptedJSON, err := json.Marshal(emptyIfNil(c.AcceptedAnswers))
		if err != nil {
			return 0, fmt.Errorf("marshal accepted answers: %w", err)
		}
		hintsJSON, err := json.Marshal(emptyIfNil(c.Hints))
		if err != nil {
			return 0, fmt.Errorf("marshal hints: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
INSERT INTO staged_questions (
	id, source_file, source_question_num, topic, tier, title, content, answer, answer_type,
	accepted_answers, hints, solution, heuristic, confidence, reasoning, status, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
ON CONFLICT DO NOTHING
`,
			staged.ID, staged.SourceFile, staged.SourceQuestionNum, string(c.Topic), c.Tier,
			c.Title, c.Content, c.Answer, string(c.AnswerType),
			acceptedJSON, hintsJSON, c.Solution, c.Heuristic, c.Confidence, c.Reasoning,
			string(staged.Status), staged.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("insert staged question: %w", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit staging tx: %w", err)
	}
	return inserted, nil
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
