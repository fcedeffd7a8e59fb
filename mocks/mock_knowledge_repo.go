package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reqsmith/internal/domain"
)

// MockKnowledgeRepo is a mock implementation of port.KnowledgeRepository.
type MockKnowledgeRepo struct {
	mock.Mock
}

func (m *MockKnowledgeRepo) Lookup(ctx context.Context, fieldKey string) ([]domain.KnowledgeEntry, error) {
	args := m.Called(ctx, fieldKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeEntry), args.Error(1)
}

func (m *MockKnowledgeRepo) Upsert(ctx context.Context, entry domain.KnowledgeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
