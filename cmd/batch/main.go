// Command batch runs the extraction pipeline over a folder of PDFs. It
// resumes from the folder's checkpoint file, so rerunning after an
// interruption only touches the files that have not been processed yet.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/bootstrap"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/config"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/ports"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/usecase"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/checkpoint"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/export"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/repository/postgres"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/resilience"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	folder := flag.String("folder", "./pdfs", "folder containing the PDF files")
	concurrency := flag.Int("concurrency", cfg.BatchConcurrency, "files processed in parallel per group")
	dryRun := flag.Bool("dry-run", false, "run the pipeline without writing to the database or checkpoint")
	reviewSheet := flag.String("review-sheet", "", "optional path for an .xlsx review sheet of this run's questions")
	flag.Parse()

	logger := logging.NewJSONLogger("batch", cfg.LogLevel)

	if info, err := os.Stat(*folder); err != nil || !info.IsDir() {
		log.Fatalf("folder %s does not exist or is not a directory", *folder)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Dry runs never need Postgres; only connect when results will be staged.
	var staging ports.StagingStore
	if !*dryRun {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		defer db.Close()
		repo := postgres.NewPaperRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		staging = postgres.NewStagingRepository(db)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	pipeline, err := bootstrap.BuildPipeline(cfg, staging, nil, nil, executor, logger)
	if err != nil {
		log.Fatalf("build pipeline: %v", err)
	}

	batch := usecase.NewBatchExtractUseCase(
		pipeline,
		staging,
		checkpoint.NewFileStore(),
		export.NewSheetWriter(),
		logger,
	)

	summary, err := batch.Run(ctx, usecase.BatchOptions{
		Folder:          *folder,
		Concurrency:     *concurrency,
		DryRun:          *dryRun,
		ReviewSheetPath: *reviewSheet,
	})
	if err != nil {
		log.Fatalf("batch run: %v", err)
	}

	fmt.Printf("\nDiscovered %d PDFs (%d already done)\n", summary.Discovered, summary.Skipped)
	fmt.Printf("Processed:  %d\n", summary.Processed)
	fmt.Printf("Failed:     %d\n", summary.Failed)
	fmt.Printf("Questions:  %d\n", summary.Questions)
	for _, f := range summary.Failures {
		fmt.Printf("  FAILED %s: %s\n", f.File, f.Error)
	}
}
