package retrieve

import (
	"context"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

// KnowledgeBase retrieves candidates from an auxiliary knowledge repository.
// Repository failures surface as TransportError so the
// orchestrator retries them with backoff.
type KnowledgeBase struct {
	repo port.KnowledgeRepository
	name string
}

// NewKnowledgeBase creates a knowledge-base retriever. The name appears in
// error messages and entry provenance.
func NewKnowledgeBase(repo port.KnowledgeRepository, name string) *KnowledgeBase {
	if name == "" {
		name = "knowledge-base"
	}
	return &KnowledgeBase{repo: repo, name: name}
}

func (k *KnowledgeBase) Retrieve(ctx context.Context, fieldKey string, _ port.QueryContext) ([]domain.KnowledgeEntry, error) {
	entries, err := k.repo.Lookup(ctx, fieldKey)
	if err != nil {
		return nil, &domain.TransportError{Source: k.name, Err: err}
	}
	if entries == nil {
		entries = []domain.KnowledgeEntry{}
	}
	for i := range entries {
		if entries[i].Source == "" {
			entries[i].Source = k.name
		}
	}
	sortEntries(entries)
	return entries, nil
}

var _ port.Retriever = (*KnowledgeBase)(nil)
