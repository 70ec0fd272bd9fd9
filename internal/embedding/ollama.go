package embedding

import (
	"context"
	"fmt"
	"net/url"

	ollamaapi "github.com/ollama/ollama/api"
)

// OllamaEmbedder calls a self-hosted Ollama instance's embeddings endpoint.
type OllamaEmbedder struct {
	client    *ollamaapi.Client
	modelName string
	dimension int
}

// NewOllamaEmbedder builds an OllamaEmbedder against baseURL, defaulting the
// model name to "nomic-embed-text" when unset.
func NewOllamaEmbedder(baseURL, modelName string, dimension int) *OllamaEmbedder {
	if modelName == "" {
		modelName = "nomic-embed-text"
	}
	u, _ := url.Parse(baseURL)
	return &OllamaEmbedder{
		client:    ollamaapi.NewClient(u, nil),
		modelName: modelName,
		dimension: dimension,
	}
}

func (e *OllamaEmbedder) Dimension() int { return e.dimension }

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return batchEmbed(texts, func(batch []string) ([][]float32, error) {
		return e.embedBatch(ctx, batch)
	})
}

func (e *OllamaEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := &ollamaapi.EmbedRequest{Model: e.modelName, Input: texts}
	resp, err := e.client.Embed(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	return resp.Embeddings, nil
}
