package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*PaperRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &PaperRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestEnsureSchemaRunsDDLUnderAdvisoryLock(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(int64(2026082801)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS exam_papers").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// Every column scanned into a non-pointer ExamPaper field must forbid NULL,
// or a row written outside Create breaks GetByID.
func TestSchemaDeclaresScannedColumnsNotNull(t *testing.T) {
	for _, col := range []string{
		"source TEXT NOT NULL DEFAULT ''",
		"year INTEGER NOT NULL DEFAULT 0",
		"default_tier INTEGER NOT NULL DEFAULT 0",
		"error_message TEXT NOT NULL DEFAULT ''",
	} {
		if !strings.Contains(schemaDDL, col) {
			t.Fatalf("exam_papers schema missing %q", col)
		}
	}
}

func TestGetByIDScansDefaultsRow(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	columns := []string{
		"id", "filename", "storage_path", "source", "year", "default_tier",
		"status", "page_count", "used_ocr", "ocr_confidence", "question_count",
		"error_message", "created_at", "updated_at",
	}
	mock.ExpectQuery("SELECT id, filename, storage_path").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("p1", "p.pdf", "key1", "", 0, 0, "uploaded", 0, false, nil, 0, "", now, now))

	paper, err := repo.GetByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if paper.Status != domain.StatusUploaded {
		t.Fatalf("status = %s", paper.Status)
	}
	if paper.Source != "" || paper.Year != 0 || paper.Error != "" {
		t.Fatalf("defaults row scanned as %+v", paper)
	}
	if paper.OCRConfidence != nil {
		t.Fatalf("ocr_confidence should stay nil, got %v", *paper.OCRConfidence)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename, storage_path").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrPaperNotFound) {
		t.Fatalf("expected ErrPaperNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE exam_papers").
		WithArgs("missing", string(domain.StatusProcessing), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.StatusProcessing, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrPaperNotFound) {
		t.Fatalf("expected ErrPaperNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveExtractionPersistsSummary(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	conf := 91.2
	mock.ExpectExec("UPDATE exam_papers").
		WithArgs("paper1", 12, true, conf, 34, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveExtraction(context.Background(), "paper1", domain.ExtractionSummary{
		PageCount:     12,
		UsedOCR:       true,
		OCRConfidence: &conf,
		QuestionCount: 34,
	})
	if err != nil {
		t.Fatalf("SaveExtraction() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
