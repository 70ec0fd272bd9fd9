package genmodel

import (
	"context"
	"fmt"
	"time"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIChat drives an OpenAI-compatible chat-completions endpoint.
type OpenAIChat struct {
	client    *openai.Client
	modelName string
	timeout   time.Duration
}

// NewOpenAIChat builds an OpenAIChat. An empty timeout defaults to 60s,
// matching the system-wide generation call deadline.
func NewOpenAIChat(apiKey, baseURL, modelName string, timeout time.Duration) *OpenAIChat {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIChat{
		client:    openai.NewClientWithConfig(cfg),
		modelName: modelName,
		timeout:   timeout,
	}
}

func (c *OpenAIChat) Generate(ctx context.Context, turns []interfaces.ChatTurn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, len(turns))
	for i, t := range turns {
		messages[i] = openai.ChatCompletionMessage{Role: t.Role, Content: t.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.modelName,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from generative model")
	}
	return resp.Choices[0].Message.Content, nil
}
