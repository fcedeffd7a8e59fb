package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

type knowledgeRepo struct {
	db *sqlx.DB
}

// NewKnowledgeRepo creates a new PostgreSQL-backed KnowledgeRepository.
func NewKnowledgeRepo(db *sqlx.DB) port.KnowledgeRepository {
	return &knowledgeRepo{db: db}
}

func (r *knowledgeRepo) Lookup(ctx context.Context, fieldKey string) ([]domain.KnowledgeEntry, error) {
	var entries []domain.KnowledgeEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT field_key, value, source, rank
		 FROM knowledge_entries
		 WHERE field_key = $1
		 ORDER BY rank DESC, value`,
		fieldKey)
	if err != nil {
		return nil, fmt.Errorf("knowledgeRepo.Lookup: %w", err)
	}
	return entries, nil
}

func (r *knowledgeRepo) Upsert(ctx context.Context, entry domain.KnowledgeEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO knowledge_entries (field_key, value, source, rank)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (field_key, value)
		 DO UPDATE SET source = EXCLUDED.source, rank = EXCLUDED.rank`,
		entry.FieldKey, entry.Value, entry.Source, entry.Rank)
	if err != nil {
		return fmt.Errorf("knowledgeRepo.Upsert: %w", err)
	}
	return nil
}
