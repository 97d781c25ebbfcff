package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

type PaperRepository struct {
	db *sql.DB
}

func NewPaperRepository(db *sql.DB) *PaperRepository {
	return &PaperRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// Scanned straight into non-pointer domain fields, so every metadata column
// carries NOT NULL DEFAULT; only ocr_confidence and the review columns may
// hold NULL.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS exam_papers (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT '',
	year INTEGER NOT NULL DEFAULT 0,
	default_tier INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	page_count INTEGER NOT NULL DEFAULT 0,
	used_ocr BOOLEAN NOT NULL DEFAULT FALSE,
	ocr_confidence DOUBLE PRECISION,
	question_count INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_exam_papers_status ON exam_papers(status);
CREATE INDEX IF NOT EXISTS idx_exam_papers_created_at ON exam_papers(created_at DESC);

CREATE TABLE IF NOT EXISTS staged_questions (
	id TEXT PRIMARY KEY,
	source_file TEXT NOT NULL,
	source_question_num TEXT NOT NULL DEFAULT '',
	topic TEXT NOT NULL,
	tier INTEGER NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	answer TEXT NOT NULL,
	answer_type TEXT NOT NULL,
	accepted_answers JSONB NOT NULL DEFAULT '[]'::jsonb,
	hints JSONB NOT NULL DEFAULT '[]'::jsonb,
	solution TEXT,
	heuristic TEXT,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	reasoning TEXT,
	status TEXT NOT NULL,
	final_topic TEXT,
	final_tier INTEGER,
	question_id TEXT,
	reviewed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_staged_questions_source
	ON staged_questions(source_file, source_question_num)
	WHERE source_question_num <> '';

CREATE INDEX IF NOT EXISTS idx_staged_questions_status ON staged_questions(status);
`

func (r *PaperRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *PaperRepository) Create(ctx context.Context, paper *domain.ExamPaper) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO exam_papers (
	id, filename, storage_path, source, year, default_tier, status, page_count, used_ocr, ocr_confidence, question_count, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
		paper.ID, paper.Filename, paper.StoragePath, paper.Source, paper.Year, paper.DefaultTier,
		string(paper.Status), paper.PageCount, paper.UsedOCR, paper.OCRConfidence,
		paper.QuestionCount, paper.Error, paper.CreatedAt, paper.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert exam paper: %w", err)
	}
	return nil
}

func (r *PaperRepository) GetByID(ctx context.Context, id string) (*domain.ExamPaper, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, storage_path, source, year, default_tier, status, page_count, used_ocr, ocr_confidence, question_count, error_message, created_at, updated_at
FROM exam_papers
WHERE id = $1
`, id)

	var paper domain.ExamPaper
	var status string

	err := row.Scan(
		&paper.ID, &paper.Filename, &paper.StoragePath, &paper.Source, &paper.Year, &paper.DefaultTier,
		&status, &paper.PageCount, &paper.UsedOCR, &paper.OCRConfidence,
		&paper.QuestionCount, &paper.Error, &paper.CreatedAt, &paper.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrPaperNotFound, "get exam paper", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan exam paper: %w", err)
	}
	paper.Status = domain.PaperStatus(status)
	return &paper, nil
}

func (r *PaperRepository) UpdateStatus(ctx context.Context, id string, status domain.PaperStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE exam_papers
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update paper status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrPaperNotFound, "update paper status", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *PaperRepository) SaveExtraction(ctx context.Context, id string, summary domain.ExtractionSummary) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE exam_papers
SET page_count = $2, used_ocr = $3, ocr_confidence = $4, question_count = $5, updated_at = $6
WHERE id = $1
`, id, summary.PageCount, summary.UsedOCR, summary.OCRConfidence, summary.QuestionCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save extraction summary: %w", err)
	}
	return nil
}
