package port

import (
	"context"

	"github.com/google/uuid"

	"reqsmith/internal/domain"
)

// JobStore holds extraction jobs and their results. The store's lifecycle is
// owned by the caller that constructs the service; it is never a process-wide
// singleton.
type JobStore interface {
	Create(ctx context.Context, job *domain.ExtractionJob) error
	Get(ctx context.Context, id uuid.UUID) (*domain.ExtractionJob, error)
	Update(ctx context.Context, job *domain.ExtractionJob) error
	ClaimQueued(ctx context.Context, limit int) ([]domain.ExtractionJob, error)
}
