package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/ports"
)

const DefaultBatchConcurrency = 3

// PipelineRunner is the per-file pipeline the batch driver drives.
type PipelineRunner interface {
	Run(ctx context.Context, meta domain.PaperMeta, data []byte) (*PipelineResult, error)
}

type BatchOptions struct {
	Folder          string
	Concurrency     int
	DryRun          bool
	ReviewSheetPath string
}

type BatchSummary struct {
	Discovered int
	Skipped    int
	Processed  int
	Failed     int
	Questions  int
	Failures   []domain.BatchFailure
}

// BatchExtractUseCase discovers a folder of PDFs, resumes from a checkpoint,
// and processes the pending files in fixed-size concurrent groups. Within a
// group all files run in parallel; the driver waits for the whole group
// before starting the next one and rewrites the checkpoint in between, so a
// crash loses at most one group's in-flight work. The checkpoint is only ever
// written from the driver goroutine; workers just return results.
type BatchExtractUseCase struct {
	pipeline    PipelineRunner
	staging     ports.StagingStore
	checkpoints ports.CheckpointStore
	sheets      ports.ReviewSheetWriter
	logger      *slog.Logger
}

func NewBatchExtractUseCase(
	pipeline PipelineRunner,
	staging ports.StagingStore,
	checkpoints ports.CheckpointStore,
	sheets ports.ReviewSheetWriter,
	logger *slog.Logger,
) *BatchExtractUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchExtractUseCase{
		pipeline:    pipeline,
		staging:     staging,
		checkpoints: checkpoints,
		sheets:      sheets,
		logger:      logger,
	}
}

type fileResult struct {
	file      string
	questions int
	staged    []domain.StagedQuestion
	err       error
}

func (uc *BatchExtractUseCase) Run(ctx context.Context, opts BatchOptions) (*BatchSummary, error) {
	files, err := discoverPDFs(opts.Folder)
	if err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultBatchConcurrency
	}

	progress, err := uc.checkpoints.Load(ctx, opts.Folder)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if progress == nil {
		progress = domain.NewBatchProgress(time.Now().UTC())
	}

	processed := progress.ProcessedSet()
	var pending []string
	for _, f := range files {
		if _, done := processed[f]; !done {
			pending = append(pending, f)
		}
	}

	summary := &BatchSummary{
		Discovered: len(files),
		Skipped:    len(files) - len(pending),
	}
	uc.logger.Info("batch run starting",
		"folder", opts.Folder,
		"discovered", summary.Discovered,
		"pending", len(pending),
		"resumed", summary.Skipped,
		"dry_run", opts.DryRun,
	)

	var allStaged []domain.StagedQuestion
	for start := 0; start < len(pending); start += opts.Concurrency {
		end := start + opts.Concurrency
		if end > len(pending) {
			end = len(pending)
		}
		group := pending[start:end]

		results := uc.runGroup(ctx, opts, group)

		now := time.Now().UTC()
		for _, res := range results {
			if res.err != nil {
				// A file interrupted by shutdown is not a failure: leave it
				// out of the checkpoint so the next run retries it whole.
				if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
					uc.logger.Info("file interrupted, left pending", "file", res.file)
					continue
				}
				progress.MarkFailed(res.file, res.err.Error(), now)
				summary.Failed++
				summary.Failures = append(summary.Failures, domain.BatchFailure{File: res.file, Error: res.err.Error()})
				uc.logger.Warn("file failed", "file", res.file, "error", res.err)
				continue
			}
			progress.MarkProcessed(res.file, res.questions, now)
			summary.Processed++
			summary.Questions += res.questions
			allStaged = append(allStaged, res.staged...)
			uc.logger.Info("file processed", "file", res.file, "questions", res.questions)
		}

		if !opts.DryRun {
			if err := uc.checkpoints.Save(ctx, opts.Folder, progress); err != nil {
				return summary, fmt.Errorf("save checkpoint: %w", err)
			}
		}

		if err := ctx.Err(); err != nil {
			return summary, err
		}
	}

	if opts.ReviewSheetPath != "" && uc.sheets != nil {
		if err := uc.sheets.Write(opts.ReviewSheetPath, allStaged); err != nil {
			return summary, fmt.Errorf("write review sheet: %w", err)
		}
		uc.logger.Info("review sheet written", "path", opts.ReviewSheetPath, "rows", len(allStaged))
	}

	return summary, nil
}

// runGroup launches every file of one group in parallel and blocks until all
// of them finish. Failures are carried in the results, never returned, so one
// bad file cannot cancel its siblings.
func (uc *BatchExtractUseCase) runGroup(ctx context.Context, opts BatchOptions, group []string) []fileResult {
	results := make([]fileResult, len(group))
	var eg errgroup.Group
	for i, file := range group {
		i, file := i, file
		eg.Go(func() error {
			results[i] = uc.processFile(ctx, opts, file)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

func (uc *BatchExtractUseCase) processFile(ctx context.Context, opts BatchOptions, file string) fileResult {
	data, err := os.ReadFile(filepath.Join(opts.Folder, file))
	if err != nil {
		return fileResult{file: file, err: fmt.Errorf("read file: %w", err)}
	}

	result, err := uc.pipeline.Run(ctx, metaFromFilename(file), data)
	if err != nil {
		return fileResult{file: file, err: err}
	}

	questions := len(result.Candidates)
	if !opts.DryRun {
		staged, err := uc.staging.StageCandidates(ctx, file, result.Candidates)
		if err != nil {
			return fileResult{file: file, err: fmt.Errorf("stage candidates: %w", err)}
		}
		questions = staged
	}

	now := time.Now().UTC()
	rows := make([]domain.StagedQuestion, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		rows = append(rows, domain.NewStagedQuestion(file, c, now))
	}
	return fileResult{file: file, questions: questions, staged: rows}
}

func discoverPDFs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// metaFromFilename pulls the source label and a four-digit year out of names
// like "acs_2023_prelim.pdf". Best effort; missing parts stay zero.
func metaFromFilename(file string) domain.PaperMeta {
	meta := domain.PaperMeta{Filename: file}
	base := strings.TrimSuffix(file, filepath.Ext(file))
	parts := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, part := range parts {
		if len(part) == 4 {
			if year, err := strconv.Atoi(part); err == nil && year >= 1980 && year <= 2100 {
				meta.Year = year
				if i == 1 {
					meta.Source = parts[0]
				}
				break
			}
		}
	}
	return meta
}
