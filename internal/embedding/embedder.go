// Package embedding turns text into fixed-dimension vectors via an external
// model, batching to an upstream limit and surfacing failures for the
// caller to retry.
package embedding

import (
	"fmt"
	"strings"

	"github.com/dkoraitest/consultant-copilot/internal/config"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// maxBatchSize is the upstream limit on inputs per embedding call.
const maxBatchSize = 100

// New builds an Embedder from configuration, dispatching on Source.
func New(cfg *config.ModelConfig, dimension int) (interfaces.Embedder, error) {
	switch strings.ToLower(cfg.Source) {
	case "openai", "remote":
		return NewOpenAIEmbedder(cfg.APIKey, cfg.BaseURL, cfg.ModelName, dimension, cfg.Timeout), nil
	case "ollama", "local":
		return NewOllamaEmbedder(cfg.BaseURL, cfg.ModelName, dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedder source: %s", cfg.Source)
	}
}

// batchEmbed splits texts into groups of at most maxBatchSize and calls one
// per group, preserving input order across the joined result.
func batchEmbed(texts []string, embedOne func([]string) ([][]float32, error)) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := embedOne(texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}
