package port

import "context"

// EmailSender notifies a submitter about the outcome of an extraction job.
type EmailSender interface {
	SendExtractionCompleted(ctx context.Context, toEmail, fileName string, requirementCount int) error
	SendExtractionFailed(ctx context.Context, toEmail, fileName, reason string) error
}
