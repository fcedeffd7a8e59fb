package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"reqsmith/internal/domain"
	"reqsmith/internal/orchestrator"
	"reqsmith/internal/port"
)

// SubmitInput is the DTO for submitting a document for extraction.
type SubmitInput struct {
	FileName    string
	FormatHint  string
	ContentType string
	Data        []byte
	SubmittedBy string
	NotifyEmail string
}

// ExtractionService defines the document extraction contract.
type ExtractionService interface {
	// ExtractSync runs the pipeline inline and returns the batch. On a
	// gap-fill outage the partial batch is returned together with the error.
	ExtractSync(ctx context.Context, input *SubmitInput) (*domain.ExtractionBatch, error)
	// Enqueue uploads the document and queues an extraction job.
	Enqueue(ctx context.Context, input *SubmitInput) (*domain.ExtractionJob, error)
	GetJob(ctx context.Context, id uuid.UUID) (*domain.ExtractionJob, error)
	// ProcessJob runs one claimed job to completion, including retry
	// re-queueing and completion notification.
	ProcessJob(ctx context.Context, job *domain.ExtractionJob, maxAttempts int)
}

type extractionService struct {
	orch        *orchestrator.Orchestrator
	jobs        port.JobStore
	storage     port.ObjectStorage
	emailSender port.EmailSender
	bucket      string
	maxFileSize int64
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	orch *orchestrator.Orchestrator,
	jobs port.JobStore,
	storage port.ObjectStorage,
	emailSender port.EmailSender,
	bucket string,
	maxFileSizeMB int64,
) ExtractionService {
	return &extractionService{
		orch:        orch,
		jobs:        jobs,
		storage:     storage,
		emailSender: emailSender,
		bucket:      bucket,
		maxFileSize: maxFileSizeMB * 1024 * 1024,
	}
}

func (s *extractionService) ExtractSync(ctx context.Context, input *SubmitInput) (*domain.ExtractionBatch, error) {
	if err := s.checkSize(input); err != nil {
		return nil, err
	}
	return s.orch.Run(ctx, uuid.New(), input.Data, input.FormatHint)
}

func (s *extractionService) Enqueue(ctx context.Context, input *SubmitInput) (*domain.ExtractionJob, error) {
	if err := s.checkSize(input); err != nil {
		return nil, err
	}

	job := &domain.ExtractionJob{
		ID:          uuid.New(),
		FileName:    input.FileName,
		FormatHint:  input.FormatHint,
		Status:      domain.ExtractionStatusQueued,
		SubmittedBy: input.SubmittedBy,
		NotifyEmail: input.NotifyEmail,
		CreatedAt:   time.Now().UTC(),
	}
	job.StorageKey = fmt.Sprintf("uploads/%s/%s", job.ID, input.FileName)

	err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         job.StorageKey,
		Body:        bytes.NewReader(input.Data),
		ContentType: input.ContentType,
		Size:        int64(len(input.Data)),
	})
	if err != nil {
		log.Printf("extractionService.Enqueue: upload for job %s failed: %v", job.ID, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating extraction job: %w", err)
	}
	log.Printf("extractionService.Enqueue: job %s queued (%s, %d bytes)", job.ID, input.FileName, len(input.Data))
	return job, nil
}

func (s *extractionService) GetJob(ctx context.Context, id uuid.UUID) (*domain.ExtractionJob, error) {
	return s.jobs.Get(ctx, id)
}

func (s *extractionService) ProcessJob(ctx context.Context, job *domain.ExtractionJob, maxAttempts int) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	data, err := s.storage.Download(ctx, s.bucket, job.StorageKey)
	if err != nil {
		s.finishJob(ctx, job, nil, fmt.Errorf("downloading document: %w", err), maxAttempts)
		return
	}

	batch, err := s.orch.Run(ctx, job.ID, data, job.FormatHint)
	s.finishJob(ctx, job, batch, err, maxAttempts)
}

// finishJob records the outcome of one processing attempt. Retryable
// failures below the attempt cap go back to the queue; everything else is
// terminal and triggers the notification email.
func (s *extractionService) finishJob(ctx context.Context, job *domain.ExtractionJob, batch *domain.ExtractionBatch, runErr error, maxAttempts int) {
	now := time.Now().UTC()

	switch {
	case runErr == nil:
		job.Status = domain.ExtractionStatusCompleted
		job.Error = ""
		job.Batch = batch
		job.CompletedAt = &now
	case domain.IsRetryable(runErr) && job.Attempts < maxAttempts:
		log.Printf("extractionService.ProcessJob: job %s attempt %d failed, re-queueing: %v", job.ID, job.Attempts, runErr)
		job.Status = domain.ExtractionStatusQueued
		job.Error = runErr.Error()
	default:
		job.Status = domain.ExtractionStatusFailed
		job.Error = runErr.Error()
		job.CompletedAt = &now
		// Keep the partial batch when gap filling was the only failure.
		var gapErr *domain.GapFillUnavailableError
		if errors.As(runErr, &gapErr) {
			job.Batch = gapErr.Partial
		}
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		log.Printf("extractionService.ProcessJob: updating job %s failed: %v", job.ID, err)
		return
	}

	if job.NotifyEmail == "" || job.Status == domain.ExtractionStatusQueued {
		return
	}
	if job.Status == domain.ExtractionStatusCompleted {
		count := 0
		if job.Batch != nil {
			count = len(job.Batch.Requirements)
		}
		if err := s.emailSender.SendExtractionCompleted(ctx, job.NotifyEmail, job.FileName, count); err != nil {
			log.Printf("extractionService.ProcessJob: completion email for job %s failed: %v", job.ID, err)
		}
		return
	}
	if err := s.emailSender.SendExtractionFailed(ctx, job.NotifyEmail, job.FileName, job.Error); err != nil {
		log.Printf("extractionService.ProcessJob: failure email for job %s failed: %v", job.ID, err)
	}
}

func (s *extractionService) checkSize(input *SubmitInput) error {
	if len(input.Data) == 0 {
		return domain.ErrEmptyDocument
	}
	if s.maxFileSize > 0 && int64(len(input.Data)) > s.maxFileSize {
		return domain.ErrFileTooLarge
	}
	return nil
}
