package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/ports"
)

// IngestPaperUseCase accepts an uploaded exam paper, runs the cheap input
// checks up front, stores the original bytes, and hands the paper to the
// processing queue.
type IngestPaperUseCase struct {
	repo      ports.PaperRepository
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
	validator ports.PDFValidator
	maxBytes  int
}

func NewIngestPaperUseCase(
	repo ports.PaperRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	validator ports.PDFValidator,
	maxBytes int,
) *IngestPaperUseCase {
	return &IngestPaperUseCase{
		repo:      repo,
		storage:   storage,
		queue:     queue,
		validator: validator,
		maxBytes:  maxBytes,
	}
}

func (uc *IngestPaperUseCase) Upload(ctx context.Context, req ports.UploadRequest) (*domain.ExamPaper, error) {
	data, err := uc.readBounded(req.Body)
	if err != nil {
		return nil, err
	}
	if err := uc.validator.CheckSignature(data); err != nil {
		return nil, err
	}
	pageCount, err := uc.validator.CheckLimits(data)
	if err != nil {
		return nil, err
	}
	if req.DefaultTier != 0 && (req.DefaultTier < domain.MinTier || req.DefaultTier > domain.MaxTier) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate upload",
			fmt.Errorf("tier hint must be between %d and %d", domain.MinTier, domain.MaxTier))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(req.Filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	paper := &domain.ExamPaper{
		ID:          id,
		Filename:    req.Filename,
		StoragePath: storageKey,
		Source:      req.Source,
		Year:        req.Year,
		DefaultTier: req.DefaultTier,
		Status:      domain.StatusUploaded,
		PageCount:   pageCount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, paper); err != nil {
		return nil, fmt.Errorf("create paper record: %w", err)
	}

	if err := uc.queue.PublishPaperUploaded(ctx, paper.ID); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return paper, nil
}

// readBounded reads at most maxBytes+1 so an oversized upload is rejected
// without buffering the whole body.
func (uc *IngestPaperUseCase) readBounded(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, int64(uc.maxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if len(data) > uc.maxBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate upload",
			fmt.Errorf("PDF exceeds the %d MB size limit", uc.maxBytes/(1024*1024)))
	}
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate upload", errors.New("empty upload body"))
	}
	return data, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "paper.pdf"
	}
	return base
}
