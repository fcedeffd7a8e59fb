package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"reqsmith/internal/auth"
	"reqsmith/internal/config"
	"reqsmith/internal/extract"
	"reqsmith/internal/gapfill"
	"reqsmith/internal/handler"
	"reqsmith/internal/normalize"
	"reqsmith/internal/ocr"
	"reqsmith/internal/orchestrator"
	"reqsmith/internal/port"
	"reqsmith/internal/repository/postgres"
	"reqsmith/internal/retrieve"
	"reqsmith/internal/router"
	"reqsmith/internal/service"
	s3storage "reqsmith/internal/storage/s3"

	"reqsmith/internal/domain"
	emailnoop "reqsmith/internal/email/noop"
	emailses "reqsmith/internal/email/ses"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Storage and job persistence
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	jobStore := postgres.NewJobRepo(db)

	// Knowledge retrieval chain: in-document scanning first, then the
	// configured knowledge sources, with a shared cache in front.
	retrievers := []port.Retriever{retrieve.NewDocumentScanner()}
	if cfg.Retrieval.KnowledgeFile != "" {
		fileSource, err := retrieve.LoadFileKnowledgeSource(cfg.Retrieval.KnowledgeFile)
		if err != nil {
			return fmt.Errorf("failed to load knowledge file: %w", err)
		}
		retrievers = append(retrievers, retrieve.NewKnowledgeBase(fileSource, "file"))
	}
	if cfg.Retrieval.UseDB {
		retrievers = append(retrievers, retrieve.NewKnowledgeBase(postgres.NewKnowledgeRepo(db), "postgres"))
	}
	retriever := retrieve.NewCached(
		retrieve.NewChain(retrievers...),
		time.Duration(cfg.Retrieval.CacheTTLSecs)*time.Second,
	)

	generator, err := buildGenerator(&cfg.GapFill)
	if err != nil {
		return err
	}
	filler := gapfill.New(retriever, generator, gapfill.Config{
		Concurrency: cfg.GapFill.Concurrency,
		CallTimeout: time.Duration(cfg.GapFill.CallTimeoutSecs) * time.Second,
	})

	// Pipeline
	recognizer := ocr.NewTesseractRecognizer(ocr.NewExecRunner(), cfg.OCR.Binary, cfg.OCR.Language)
	registry := extract.NewRegistry(recognizer)
	orch := orchestrator.New(registry, normalize.New(), filler, orchestrator.Config{
		MaxRetries:     cfg.GapFill.MaxRetries,
		RetryBaseDelay: time.Duration(cfg.GapFill.RetryBaseDelayMS) * time.Millisecond,
		FallbackFormat: domain.FormatTag(cfg.Pipeline.FallbackFormat),
		SkipGapFill:    cfg.GapFill.Skip,
	})

	emailSender, err := buildEmailSender(&cfg.Email)
	if err != nil {
		return err
	}

	extractionSvc := service.NewExtractionService(orch, jobStore, s3Client, emailSender, cfg.S3.Bucket, cfg.S3.MaxFileSizeMB)

	// Queue worker
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := service.NewExtractionQueueWorker(jobStore, extractionSvc, service.ExtractionQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	// HTTP server
	tokens := auth.NewTokenManager(cfg.JWT)
	extractionH := handler.NewExtractionHandler(extractionSvc)
	healthH := handler.NewHealthHandler(db)
	r := router.Setup(tokens, extractionH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone
	log.Printf("Shutdown complete")
	return nil
}

func buildGenerator(cfg *config.GapFillConfig) (port.Generator, error) {
	switch cfg.Provider {
	case "", "local":
		return gapfill.NewLocalGenerator(), nil
	case "openai":
		gen, err := gapfill.NewOpenAIGenerator(gapfill.OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai generator: %w", err)
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown gap fill provider %q", cfg.Provider)
	}
}

func buildEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "", "noop":
		return emailnoop.NewNoopSender(), nil
	case "ses":
		sender, err := emailses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
