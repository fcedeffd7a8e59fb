package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"reqsmith/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendExtractionCompleted(ctx context.Context, toEmail, fileName string, requirementCount int) error {
	subject := fmt.Sprintf("Extraction finished: %s", fileName)
	htmlBody := buildCompletedHTML(fileName, requirementCount)
	textBody := fmt.Sprintf("Your document %q has been processed.\n\n%d requirements were extracted and are ready for review.\n\nReqSmith", fileName, requirementCount)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendExtractionFailed(ctx context.Context, toEmail, fileName, reason string) error {
	subject := fmt.Sprintf("Extraction failed: %s", fileName)
	htmlBody := buildFailedHTML(fileName, reason)
	textBody := fmt.Sprintf("Your document %q could not be processed.\n\nReason: %s\n\nPlease check the file and try again.\n\nReqSmith", fileName, reason)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildCompletedHTML(fileName string, requirementCount int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Extraction finished</h2>
  <p>Your document <strong>%s</strong> has been processed.</p>
  <p><strong>%d</strong> requirements were extracted and are ready for review.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">ReqSmith - Requirement Extraction Platform</p>
</body>
</html>`, fileName, requirementCount)
}

func buildFailedHTML(fileName, reason string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Extraction failed</h2>
  <p>Your document <strong>%s</strong> could not be processed.</p>
  <p style="color: #666;">Reason: %s</p>
  <p>Please check the file and try again.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">ReqSmith - Requirement Extraction Platform</p>
</body>
</html>`, fileName, reason)
}
