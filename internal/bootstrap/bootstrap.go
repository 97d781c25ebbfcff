// Package bootstrap wires configuration, infrastructure, and use cases for
// the api and worker binaries. The batch CLI wires itself: it needs no
// database or queue in dry-run mode.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/config"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/ports"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/usecase"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/chunking"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/extract"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/llm/ollama"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/pdfcheck"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/queue/nats"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/repository/postgres"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/resilience"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/storage/localfs"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/textnorm"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.PaperRepository
	IngestUC  ports.PaperIngestor
	ProcessUC *usecase.ProcessPaperUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewPaperRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	staging := postgres.NewStagingRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	pipeline, err := BuildPipeline(cfg, staging, repo, storage, executor, logger)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, err
	}

	ingestUC := usecase.NewIngestPaperUseCase(
		repo, storage, queue,
		pdfcheck.New(pdfcheck.Limits{MaxBytes: cfg.PDFMaxBytes, MaxPages: cfg.PDFMaxPages}),
		cfg.PDFMaxBytes,
	)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: pipeline,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// BuildPipeline assembles the paper processing use case. Persistence-backed
// callers pass their repositories; the batch CLI in dry-run mode passes nil
// stores and only uses the Run path.
func BuildPipeline(
	cfg config.Config,
	staging ports.StagingStore,
	repo ports.PaperRepository,
	storage ports.ObjectStorage,
	executor *resilience.Executor,
	logger *slog.Logger,
) (*usecase.ProcessPaperUseCase, error) {
	taxonomy, err := cfg.Taxonomy()
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaModel, cfg.ExtractRPS, executor)
	extractor := ollama.NewExtractor(ollamaClient, taxonomy, cfg.ReviewThreshold)

	return usecase.NewProcessPaperUseCase(
		repo,
		storage,
		pdfcheck.New(pdfcheck.Limits{MaxBytes: cfg.PDFMaxBytes, MaxPages: cfg.PDFMaxPages}),
		extract.NewNative(cfg.MinMeaningfulChars),
		extract.NewOCR(cfg.OCRScale, logger),
		textnorm.New(),
		chunking.New(cfg.ChunkBudget),
		extractor,
		staging,
		logger,
	), nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
