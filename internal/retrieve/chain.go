package retrieve

import (
	"context"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

// Chain merges candidates from several retrievers, preserving rank order
// across sources. A transport failure in any member fails the whole call so
// the orchestrator can retry it; partial knowledge is worse than delayed
// knowledge here because generation is conditioned on the candidate set.
type Chain struct {
	retrievers []port.Retriever
}

// NewChain creates a retriever over the given members, queried in order.
func NewChain(retrievers ...port.Retriever) *Chain {
	return &Chain{retrievers: retrievers}
}

func (c *Chain) Retrieve(ctx context.Context, fieldKey string, qc port.QueryContext) ([]domain.KnowledgeEntry, error) {
	merged := []domain.KnowledgeEntry{}
	for _, r := range c.retrievers {
		entries, err := r.Retrieve(ctx, fieldKey, qc)
		if err != nil {
			return nil, err
		}
		merged = append(merged, entries...)
	}
	sortEntries(merged)
	return merged, nil
}

var _ port.Retriever = (*Chain)(nil)
