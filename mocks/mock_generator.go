package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reqsmith/internal/domain"
)

// MockGenerator is a mock implementation of port.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, fieldKey string, candidates []domain.KnowledgeEntry) (string, error) {
	args := m.Called(ctx, fieldKey, candidates)
	return args.String(0), args.Error(1)
}
