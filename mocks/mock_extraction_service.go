package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"reqsmith/internal/domain"
	"reqsmith/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) ExtractSync(ctx context.Context, input *service.SubmitInput) (*domain.ExtractionBatch, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionBatch), args.Error(1)
}

func (m *MockExtractionService) Enqueue(ctx context.Context, input *service.SubmitInput) (*domain.ExtractionJob, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionJob), args.Error(1)
}

func (m *MockExtractionService) GetJob(ctx context.Context, id uuid.UUID) (*domain.ExtractionJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionJob), args.Error(1)
}

func (m *MockExtractionService) ProcessJob(ctx context.Context, job *domain.ExtractionJob, maxAttempts int) {
	m.Called(ctx, job, maxAttempts)
}
