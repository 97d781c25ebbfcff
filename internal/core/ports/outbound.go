package ports

import (
	"context"
	"io"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

// PaperRepository persists and reads exam paper state.
type PaperRepository interface {
	Create(ctx context.Context, paper *domain.ExamPaper) error
	GetByID(ctx context.Context, id string) (*domain.ExamPaper, error)
	UpdateStatus(ctx context.Context, id string, status domain.PaperStatus, errMessage string) error
	SaveExtraction(ctx context.Context, id string, summary domain.ExtractionSummary) error
}

// StagingStore writes candidates into the human-review holding area. It
// returns the number of rows actually inserted; candidates colliding on the
// (sourceFile, sourceQuestionNum) soft-uniqueness hint are silently skipped.
type StagingStore interface {
	StageCandidates(ctx context.Context, sourceFile string, candidates []domain.CandidateQuestion) (int, error)
}

// ObjectStorage stores uploaded source PDFs.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes paper-uploaded events (service mode).
type MessageQueue interface {
	PublishPaperUploaded(ctx context.Context, paperID string) error
	SubscribePaperUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// PDFValidator performs the cheap pre-extraction checks: byte signature,
// size limit, and page-count limit. CheckLimits reports the page count so
// later stages do not have to re-derive it.
type PDFValidator interface {
	CheckSignature(data []byte) error
	CheckLimits(data []byte) (pageCount int, err error)
}

// TextExtractor pulls per-page text from a digital PDF and reports whether
// the yield is meaningful enough to skip OCR.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (*domain.ExtractionResult, error)
}

// OCRExtractor rasterizes pages and recognises text when native extraction
// yields too little. Page-level recognition failures are tolerated.
type OCRExtractor interface {
	Extract(ctx context.Context, data []byte) (*domain.ExtractionResult, error)
}

// TextNormalizer cleans raw extracted text. Must be idempotent.
type TextNormalizer interface {
	Normalize(text string) string
}

// Chunker splits normalized text into segments sized for the extraction
// service's context window.
type Chunker interface {
	Split(text string) []string
}

// QuestionExtractor turns one chunk into candidate questions via the
// structured-extraction service.
type QuestionExtractor interface {
	ExtractQuestions(ctx context.Context, chunk domain.Chunk, meta domain.PaperMeta) (domain.ChunkExtraction, error)
}

// CheckpointStore loads and saves batch progress for a given input folder.
// Load returns (nil, nil) when no checkpoint exists yet.
type CheckpointStore interface {
	Load(ctx context.Context, folder string) (*domain.BatchProgress, error)
	Save(ctx context.Context, folder string, progress *domain.BatchProgress) error
}

// ReviewSheetWriter exports staged questions for reviewers working outside
// the web UI.
type ReviewSheetWriter interface {
	Write(path string, rows []domain.StagedQuestion) error
}
