package port

import (
	"context"

	"reqsmith/internal/domain"
)

// Generator produces a value for a missing field from retrieved candidates.
// Implementations must be deterministic for a fixed (fieldKey, candidates)
// pair and must never produce text unsupported by the candidates. The gap
// filler never calls Generate with an empty candidate slice.
type Generator interface {
	Generate(ctx context.Context, fieldKey string, candidates []domain.KnowledgeEntry) (string, error)
}
