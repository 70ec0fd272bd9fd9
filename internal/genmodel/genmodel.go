// Package genmodel binds the generative model consumed by the retrieval
// engine's answer-generation step: a chat-style message API accepting
// (system, user) turns and returning plain text.
package genmodel

import (
	"fmt"
	"strings"

	"github.com/dkoraitest/consultant-copilot/internal/config"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// New builds a GenerativeModel from configuration, dispatching on Source.
func New(cfg *config.ModelConfig) (interfaces.GenerativeModel, error) {
	switch strings.ToLower(cfg.Source) {
	case "openai", "remote":
		return NewOpenAIChat(cfg.APIKey, cfg.BaseURL, cfg.ModelName, cfg.Timeout), nil
	case "ollama", "local":
		return NewOllamaChat(cfg.BaseURL, cfg.ModelName), nil
	default:
		return nil, fmt.Errorf("unsupported generative model source: %s", cfg.Source)
	}
}
