package service

import (
	"context"
	"log"
	"sync"
	"time"

	"reqsmith/internal/port"
)

// ExtractionQueueConfig holds settings for the extraction queue worker.
type ExtractionQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
}

// ExtractionQueueWorker polls for queued jobs and dispatches them for
// extraction.
type ExtractionQueueWorker struct {
	jobs    port.JobStore
	service ExtractionService
	cfg     ExtractionQueueConfig
	wg      sync.WaitGroup
}

// NewExtractionQueueWorker creates a new ExtractionQueueWorker.
func NewExtractionQueueWorker(jobs port.JobStore, service ExtractionService, cfg ExtractionQueueConfig) *ExtractionQueueWorker {
	return &ExtractionQueueWorker{
		jobs:    jobs,
		service: service,
		cfg:     cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight extractions have finished.
func (w *ExtractionQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("extractionQueueWorker: started (poll=%s, concurrency=%d, maxRetries=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			log.Printf("extractionQueueWorker: shutting down, waiting for in-flight extractions...")
			w.wg.Wait()
			log.Printf("extractionQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			jobs, err := w.jobs.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll — exit gracefully
					continue
				}
				log.Printf("extractionQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range jobs {
				job := jobs[i] // copy for goroutine
				job.Attempts++

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight extractions complete even during shutdown.
					jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
					defer cancel()

					log.Printf("extractionQueueWorker: dispatching job %s (attempt %d)", job.ID, job.Attempts)
					w.service.ProcessJob(jobCtx, &job, w.cfg.MaxRetries)
				}()
			}
		}
	}
}
