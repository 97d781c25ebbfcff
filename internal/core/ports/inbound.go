package ports

import (
	"context"
	"io"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

// UploadRequest is a single exam paper arriving through the service entry
// point, plus its declared metadata.
type UploadRequest struct {
	Filename    string
	Source      string
	Year        int
	DefaultTier int
	Body        io.Reader
}

// PaperIngestor is the inbound contract for paper upload orchestration.
type PaperIngestor interface {
	Upload(ctx context.Context, req UploadRequest) (*domain.ExamPaper, error)
}

// PaperProcessor is the inbound contract for asynchronous paper processing.
type PaperProcessor interface {
	ProcessByID(ctx context.Context, paperID string) error
}

// PaperReader is the inbound read model for paper metadata and status polling.
type PaperReader interface {
	GetByID(ctx context.Context, id string) (*domain.ExamPaper, error)
}
