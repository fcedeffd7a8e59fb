package port

import (
	"context"

	"reqsmith/internal/domain"
)

// QueryContext carries the surrounding context for a retrieval call: the
// document under analysis and the requirement the missing field belongs to.
type QueryContext struct {
	DocumentText string
	Requirement  *domain.Requirement
}

// Retriever returns candidate knowledge entries for a missing field, ranked
// by relevance. "No results" is an empty slice and nil error; only transport
// or connectivity failures return an error, which the orchestrator treats as
// retryable.
type Retriever interface {
	Retrieve(ctx context.Context, fieldKey string, qc QueryContext) ([]domain.KnowledgeEntry, error)
}

// KnowledgeRepository is the persistence port behind the knowledge-base
// retriever.
type KnowledgeRepository interface {
	Lookup(ctx context.Context, fieldKey string) ([]domain.KnowledgeEntry, error)
	Upsert(ctx context.Context, entry domain.KnowledgeEntry) error
}
