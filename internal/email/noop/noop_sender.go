package noop

import (
	"context"
	"log"

	"reqsmith/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs notifications to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendExtractionCompleted(_ context.Context, toEmail, fileName string, requirementCount int) error {
	log.Printf("[NOOP EMAIL] Extraction completed for %s: %q yielded %d requirements", toEmail, fileName, requirementCount)
	return nil
}

func (s *noopSender) SendExtractionFailed(_ context.Context, toEmail, fileName, reason string) error {
	log.Printf("[NOOP EMAIL] Extraction failed for %s: %q: %s", toEmail, fileName, reason)
	return nil
}
