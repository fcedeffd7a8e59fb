package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendExtractionCompleted(ctx context.Context, toEmail, fileName string, requirementCount int) error {
	args := m.Called(ctx, toEmail, fileName, requirementCount)
	return args.Error(0)
}

func (m *MockEmailSender) SendExtractionFailed(ctx context.Context, toEmail, fileName, reason string) error {
	args := m.Called(ctx, toEmail, fileName, reason)
	return args.Error(0)
}
