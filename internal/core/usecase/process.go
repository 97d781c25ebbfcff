package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/ports"
)

// PipelineResult is everything one document's pipeline run produced.
type PipelineResult struct {
	Extraction   *domain.ExtractionResult
	Candidates   []domain.CandidateQuestion
	ChunkCount   int
	FailedChunks int
}

// PipelineObserver receives per-paper outcome details for instrumentation.
type PipelineObserver interface {
	ObservePaper(usedOCR bool, questions, failedChunks int)
}

// ProcessPaperUseCase runs the extraction pipeline for one paper: validate,
// extract (with OCR fallback), normalize, chunk, extract questions per chunk,
// dedupe, stage.
type ProcessPaperUseCase struct {
	repo       ports.PaperRepository
	storage    ports.ObjectStorage
	validator  ports.PDFValidator
	extractor  ports.TextExtractor
	ocr        ports.OCRExtractor
	normalizer ports.TextNormalizer
	chunker    ports.Chunker
	questions  ports.QuestionExtractor
	staging    ports.StagingStore
	logger     *slog.Logger
	observer   PipelineObserver
}

// SetObserver attaches an optional instrumentation hook. Must be called
// before processing starts.
func (uc *ProcessPaperUseCase) SetObserver(obs PipelineObserver) {
	uc.observer = obs
}

func NewProcessPaperUseCase(
	repo ports.PaperRepository,
	storage ports.ObjectStorage,
	validator ports.PDFValidator,
	extractor ports.TextExtractor,
	ocr ports.OCRExtractor,
	normalizer ports.TextNormalizer,
	chunker ports.Chunker,
	questions ports.QuestionExtractor,
	staging ports.StagingStore,
	logger *slog.Logger,
) *ProcessPaperUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessPaperUseCase{
		repo:       repo,
		storage:    storage,
		validator:  validator,
		extractor:  extractor,
		ocr:        ocr,
		normalizer: normalizer,
		chunker:    chunker,
		questions:  questions,
		staging:    staging,
		logger:     logger,
	}
}

// ProcessByID drives one uploaded paper through the pipeline and stages the
// result. Service-mode entry point, invoked by the queue worker.
func (uc *ProcessPaperUseCase) ProcessByID(ctx context.Context, paperID string) error {
	if err := uc.repo.UpdateStatus(ctx, paperID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	paper, err := uc.repo.GetByID(ctx, paperID)
	if err != nil {
		return fmt.Errorf("fetch paper by id: %w", err)
	}

	data, err := uc.readStored(ctx, paper.StoragePath)
	if err != nil {
		return uc.failPaper(ctx, paperID, err)
	}

	result, err := uc.Run(ctx, metaFromPaper(paper), data)
	if err != nil {
		return uc.failPaper(ctx, paperID, err)
	}

	staged, err := uc.staging.StageCandidates(ctx, paper.Filename, result.Candidates)
	if err != nil {
		return uc.failPaper(ctx, paperID, fmt.Errorf("stage candidates: %w", err))
	}

	summary := domain.ExtractionSummary{
		PageCount:     result.Extraction.PageCount,
		UsedOCR:       result.Extraction.UsedOCR,
		OCRConfidence: result.Extraction.OCRConfidence,
		QuestionCount: staged,
	}
	if err := uc.repo.SaveExtraction(ctx, paperID, summary); err != nil {
		return uc.failPaper(ctx, paperID, fmt.Errorf("save extraction summary: %w", err))
	}

	if err := uc.repo.UpdateStatus(ctx, paperID, domain.StatusReadyForReview, ""); err != nil {
		return fmt.Errorf("set status=ready_for_review: %w", err)
	}

	if uc.observer != nil {
		uc.observer.ObservePaper(result.Extraction.UsedOCR, staged, result.FailedChunks)
	}
	return nil
}

// Run executes validation through deduplication on raw PDF bytes without
// touching persistence. The batch driver shares this path.
func (uc *ProcessPaperUseCase) Run(ctx context.Context, meta domain.PaperMeta, data []byte) (*PipelineResult, error) {
	if err := uc.validator.CheckSignature(data); err != nil {
		return nil, err
	}
	if _, err := uc.validator.CheckLimits(data); err != nil {
		return nil, err
	}

	extraction, err := uc.extract(ctx, meta.Filename, data)
	if err != nil {
		return nil, err
	}

	text := uc.normalizer.Normalize(extraction.Text)
	segments := uc.chunker.Split(text)
	if len(segments) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chunk text", errors.New("no text to extract from"))
	}

	candidates, failed, err := uc.extractCandidates(ctx, meta, segments)
	if err != nil {
		return nil, err
	}
	candidates = Dedupe(candidates)

	return &PipelineResult{
		Extraction:   extraction,
		Candidates:   candidates,
		ChunkCount:   len(segments),
		FailedChunks: failed,
	}, nil
}

// extract runs native extraction and falls back to OCR when the yield is not
// meaningful. Extraction errors are fatal for the document.
func (uc *ProcessPaperUseCase) extract(ctx context.Context, filename string, data []byte) (*domain.ExtractionResult, error) {
	result, err := uc.extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if result.Meaningful {
		return result, nil
	}

	uc.logger.Info("native text yield below threshold, running ocr", "file", filename)
	ocrResult, err := uc.ocr.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("ocr fallback: %w", err)
	}
	return ocrResult, nil
}

// extractCandidates fans the chunks through the extraction service in
// document order. A failed chunk contributes zero candidates and never aborts
// the document; cancellation of the document's context does, so a half
// processed paper is never reported as a success.
func (uc *ProcessPaperUseCase) extractCandidates(ctx context.Context, meta domain.PaperMeta, segments []string) ([]domain.CandidateQuestion, int, error) {
	var candidates []domain.CandidateQuestion
	failed := 0
	for i, segment := range segments {
		chunk := domain.Chunk{Text: segment, Index: i + 1, Total: len(segments)}
		extraction, err := uc.questions.ExtractQuestions(ctx, chunk, meta)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, failed, fmt.Errorf("extraction interrupted at chunk %d of %d: %w", chunk.Index, chunk.Total, ctxErr)
			}
			failed++
			uc.logger.Warn("chunk extraction failed",
				"file", meta.Filename,
				"chunk", chunk.Index,
				"chunks", chunk.Total,
				"error", err,
			)
			continue
		}
		candidates = append(candidates, extraction.Questions...)
	}
	return candidates, failed, nil
}

func (uc *ProcessPaperUseCase) readStored(ctx context.Context, key string) ([]byte, error) {
	reader, err := uc.storage.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open stored paper: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read stored paper: %w", err)
	}
	return data, nil
}

func (uc *ProcessPaperUseCase) failPaper(ctx context.Context, paperID string, processErr error) error {
	if failErr := uc.repo.UpdateStatus(ctx, paperID, domain.StatusFailed, processErr.Error()); failErr != nil {
		return fmt.Errorf("%w; mark failed status: %v", processErr, failErr)
	}
	return processErr
}

func metaFromPaper(paper *domain.ExamPaper) domain.PaperMeta {
	return domain.PaperMeta{
		Filename:    paper.Filename,
		Source:      paper.Source,
		Year:        paper.Year,
		DefaultTier: paper.DefaultTier,
	}
}
