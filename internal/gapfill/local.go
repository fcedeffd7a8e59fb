package gapfill

import (
	"context"
	"sort"
	"strings"

	"reqsmith/internal/domain"
)

// LocalGenerator is a deterministic rule-based generator: it answers with the
// highest-ranked candidate whose value is usable for the field, and returns
// ErrNoAnswer otherwise. It never invents text that is not in the candidates,
// which makes it a safe default when no model backend is configured.
type LocalGenerator struct{}

// NewLocalGenerator creates a LocalGenerator.
func NewLocalGenerator() *LocalGenerator {
	return &LocalGenerator{}
}

// Generate picks the best candidate for the field. Candidates are re-sorted
// locally so the answer does not depend on retriever ordering.
func (g *LocalGenerator) Generate(_ context.Context, fieldKey string, candidates []domain.KnowledgeEntry) (string, error) {
	ranked := make([]domain.KnowledgeEntry, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rank != ranked[j].Rank {
			return ranked[i].Rank > ranked[j].Rank
		}
		return ranked[i].Value < ranked[j].Value
	})

	for _, entry := range ranked {
		value := strings.TrimSpace(entry.Value)
		if value == "" {
			continue
		}
		if fieldKey == domain.FieldKeyPriority {
			p, ok := domain.CanonicalPriority(value)
			if !ok {
				continue
			}
			return string(p), nil
		}
		return value, nil
	}
	return "", domain.ErrNoAnswer
}
