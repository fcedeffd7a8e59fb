package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

// MockRetriever is a mock implementation of port.Retriever.
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, fieldKey string, qc port.QueryContext) ([]domain.KnowledgeEntry, error) {
	args := m.Called(ctx, fieldKey, qc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeEntry), args.Error(1)
}
