package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reqsmith/internal/port"
)

// MockTextRecognizer is a mock implementation of port.TextRecognizer.
type MockTextRecognizer struct {
	mock.Mock
}

func (m *MockTextRecognizer) Recognize(ctx context.Context, image []byte) (port.RecognizedText, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(port.RecognizedText), args.Error(1)
}
