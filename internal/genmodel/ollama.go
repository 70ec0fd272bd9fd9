package genmodel

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
	ollamaapi "github.com/ollama/ollama/api"
)

// OllamaChat drives a self-hosted Ollama chat model.
type OllamaChat struct {
	client    *ollamaapi.Client
	modelName string
}

// NewOllamaChat builds an OllamaChat against baseURL.
func NewOllamaChat(baseURL, modelName string) *OllamaChat {
	u, _ := url.Parse(baseURL)
	return &OllamaChat{
		client:    ollamaapi.NewClient(u, nil),
		modelName: modelName,
	}
}

func (c *OllamaChat) Generate(ctx context.Context, turns []interfaces.ChatTurn) (string, error) {
	messages := make([]ollamaapi.Message, len(turns))
	for i, t := range turns {
		messages[i] = ollamaapi.Message{Role: t.Role, Content: t.Content}
	}

	stream := false
	var content string
	err := c.client.Chat(ctx, &ollamaapi.ChatRequest{
		Model:    c.modelName,
		Messages: messages,
		Stream:   &stream,
	}, func(resp ollamaapi.ChatResponse) error {
		content = resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return content, nil
}
