// Package memory provides an in-memory JobStore for single-process use: the
// CLI and tests run against it without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

type jobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.ExtractionJob
}

// NewJobStore creates an empty in-memory JobStore.
func NewJobStore() port.JobStore {
	return &jobStore{jobs: make(map[uuid.UUID]*domain.ExtractionJob)}
}

// cloneJob deep-copies a job so store and caller never share the batch, its
// requirements slice, or the field maps inside it.
func cloneJob(job *domain.ExtractionJob) *domain.ExtractionJob {
	clone := *job
	if job.CompletedAt != nil {
		at := *job.CompletedAt
		clone.CompletedAt = &at
	}
	if job.Batch != nil {
		batch := *job.Batch
		if job.Batch.Requirements != nil {
			batch.Requirements = make([]domain.Requirement, len(job.Batch.Requirements))
			copy(batch.Requirements, job.Batch.Requirements)
			for i := range batch.Requirements {
				if fields := batch.Requirements[i].Fields; fields != nil {
					copied := make(map[string]domain.FieldValue, len(fields))
					for k, v := range fields {
						copied[k] = v
					}
					batch.Requirements[i].Fields = copied
				}
			}
		}
		clone.Batch = &batch
	}
	return &clone
}

func (s *jobStore) Create(_ context.Context, job *domain.ExtractionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *jobStore) Get(_ context.Context, id uuid.UUID) (*domain.ExtractionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneJob(job), nil
}

func (s *jobStore) Update(_ context.Context, job *domain.ExtractionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return domain.ErrNotFound
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *jobStore) ClaimQueued(_ context.Context, limit int) ([]domain.ExtractionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var queued []*domain.ExtractionJob
	for _, job := range s.jobs {
		if job.Status == domain.ExtractionStatusQueued {
			queued = append(queued, job)
		}
	}
	sort.Slice(queued, func(i, j int) bool {
		return queued[i].CreatedAt.Before(queued[j].CreatedAt)
	})
	if len(queued) > limit {
		queued = queued[:limit]
	}

	out := make([]domain.ExtractionJob, 0, len(queued))
	for _, job := range queued {
		job.Status = domain.ExtractionStatusProcessing
		out = append(out, *cloneJob(job))
	}
	return out, nil
}
