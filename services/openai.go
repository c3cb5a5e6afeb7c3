package services

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIClient wraps the OpenAI-compatible chat completion endpoint used for
// task generation and the parent support chat.
type OpenAIClient struct {
	Chat llms.Model
}

func NewOpenAIClient(apiKey, apiEndpoint, model string) (*OpenAIClient, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if apiEndpoint != "" {
		opts = append(opts, openai.WithBaseURL(apiEndpoint))
	}

	chat, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return &OpenAIClient{
		Chat: chat,
	}, nil
}
