package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reqsmith/internal/domain"
)

// MockExtractor is a mock implementation of port.Extractor.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Format() domain.FormatTag {
	args := m.Called()
	return args.Get(0).(domain.FormatTag)
}

func (m *MockExtractor) Extract(ctx context.Context, data []byte) ([]domain.RawFragment, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawFragment), args.Error(1)
}
