package gapfill

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"reqsmith/internal/domain"
)

// noAnswerToken is what the model is instructed to emit when the candidates
// do not support an answer.
const noAnswerToken = "UNKNOWN"

// OpenAIConfig holds settings for the OpenAI-backed generator.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIGenerator answers missing fields through the chat completions API.
// The prompt restricts the model to the retrieved candidates and temperature
// is pinned to zero so a fixed (fieldKey, candidates) pair yields a stable
// answer.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates an OpenAIGenerator.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Generate asks the model to choose a value for fieldKey from the candidates.
// A model answer of UNKNOWN maps to ErrNoAnswer; API failures are wrapped as
// transport errors so the caller retries them.
func (g *OpenAIGenerator) Generate(ctx context.Context, fieldKey string, candidates []domain.KnowledgeEntry) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(fieldKey, candidates),
			},
		},
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		return "", &domain.TransportError{Source: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.TransportError{Source: "openai", Err: fmt.Errorf("empty completion response")}
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" || strings.EqualFold(answer, noAnswerToken) {
		return "", domain.ErrNoAnswer
	}
	return answer, nil
}

const systemPrompt = "You complete missing fields of software requirements. " +
	"Answer using only the candidate values provided. " +
	"Reply with the single best value and nothing else. " +
	"If none of the candidates supports an answer, reply with exactly " + noAnswerToken + "."

func buildPrompt(fieldKey string, candidates []domain.KnowledgeEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Field to fill: %s\n\nCandidates:\n", fieldKey)
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s (source: %s, rank: %.2f)\n", i+1, c.Value, c.Source, c.Rank)
	}
	b.WriteString("\nBest value:")
	return b.String()
}
